/*
Package x contains the ledger extensions.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together to construct the application.
The runtime extensions (system, token) are the collaborators the
escrow program relies on: native accounts and rent, and a fungible
token primitive. This package holds the authentication glue shared
by all of them.
*/
package x
