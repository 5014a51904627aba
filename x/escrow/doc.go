/*
Package escrow implements a trustless swap of two tokens between a maker
and any taker.

The maker deposits an amount of mint A into a vault and states how much of
mint B they want in return. The escrow record lives at a program derived
address computed from the maker and a seed chosen by the maker, and the
vault is the associated token account of that address. Nobody holds a key
for either of them: funds leave the vault only when this program signs for
the escrow address.

A taker who pays the requested amount of mint B receives the whole vault.
Until then the maker may refund the deposit. Either way the vault and the
record are closed, their rent goes back to the maker and the address is
marked as closed so it cannot be reused.
*/
package escrow
