/*

Package ledger defines interfaces used throughout the app, such as: storage,
transactions, handlers, addresses and program derived addresses.
It also contains helpers to work with context and abci.
Look into this package to get an brief overview of design decisions made
around interfaces and extension building blocks.

Programs (system, token, escrow) live under x/ and only talk to each other
through controllers that take a KVStore, so that every state transition of a
single transaction can be grouped into one savepoint.

*/

package ledger
