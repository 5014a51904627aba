/*
Package token implements fungible tokens on top of the system account
runtime.

A mint describes a token type and who may issue it. A token account holds
the balance of a single mint for a single owner. Both are stored as the
data of runtime accounts owned by ProgramID, using fixed size binary
layouts.

Every wallet has one canonical token account per mint, the associated
token account, whose address is derived from the wallet and the mint.
*/
package token
