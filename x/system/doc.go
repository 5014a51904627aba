/*
Package system implements the account runtime all programs run on.

Every address may hold an account: a lamport balance, the program that
owns it and an opaque data blob. Only the owner program may change the
data or close the account. Creating an account with data requires a rent
deposit proportional to its size, which is returned to a chosen
destination when the account is closed.

Native lamports can be moved between accounts owned by this package with
SendMsg.
*/
package system
