package security

import "crypto/subtle"

// Back-office client registry used by the token endpoint.
// TODO: move to the clients table once back-office onboarding exists.
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read"}
	Enabled bool
}

var Clients = map[string]Client{
	"backoffice":     {ID: "backoffice", Secret: "backoffice-secret", Perms: []string{"orders.read"}, Enabled: true},
	"svc-fulfilment": {ID: "svc-fulfilment", Secret: "fulfilment-secret", Perms: []string{"orders.read"}, Enabled: true},
	"svc-disabled":   {ID: "svc-disabled", Secret: "disabled-secret", Perms: []string{"orders.read"}, Enabled: false},
}

// Lookup returns an enabled client whose secret matches.
func Lookup(id, secret string) (Client, bool) {
	cl, ok := Clients[id]
	if !ok || !cl.Enabled || subtle.ConstantTimeCompare([]byte(cl.Secret), []byte(secret)) != 1 {
		return Client{}, false
	}
	return cl, true
}
