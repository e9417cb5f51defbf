// Package credentials produces provider clients scoped to one project and
// one identity.
//
// The management side and the customer side are always obtained through
// separate [Factory.ClientFor] calls and cached under separate keys, so a
// failure on one side never blocks work that needs only the other.
// Credential issuance itself is external: a [TokenSource] hands out opaque
// tokens and a [Connector] turns a token into a client.
package credentials
