package security

// Client is an API consumer allowed to request tokens. The subject becomes
// the user id the core sees; orders.admin marks back-office clients.
type Client struct {
	Secret  string
	Subject string
	Perms   []string
	Enabled bool
}

// Clients is the static client registry. Replace with a real identity
// provider lookup when one exists; the shape of the issued token stays.
var Clients = map[string]Client{
	"storefront-web": {
		Secret:  "storefront-secret",
		Subject: "", // storefront passes the shopper id as token subject
		Perms:   []string{"orders.read", "orders.write"},
		Enabled: true,
	},
	"backoffice": {
		Secret:  "backoffice-secret",
		Subject: "backoffice",
		Perms:   []string{"orders.read", "orders.write", "orders.admin"},
		Enabled: true,
	},
}
