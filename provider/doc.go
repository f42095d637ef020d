/*
Package provider is portaria's only doorway to the external managed auth
provider.

The provider owns everything hard about authentication: credential storage,
password hashing, token issuance and verification, rate limiting and email
delivery. This package maps portaria's needs onto the provider's REST
surface and nothing more.

A Factory is configured once at boot. Handlers ask it for a Client per
request - anonymous or bound to the request's access token - so no session
state is ever shared across concurrent requests.
*/
package provider
