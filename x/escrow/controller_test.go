package escrow

import (
	"testing"

	"github.com/iov-one/ledger/x/token"
	. "github.com/smartystreets/goconvey/convey"
)

func TestController(t *testing.T) {
	Convey("Given an open escrow", t, func() {
		f := newFixture(t)
		addr, bump, err := EscrowAddress(f.maker, testSeed)
		So(err, ShouldBeNil)
		e := &Escrow{
			Maker:   f.maker,
			Seed:    testSeed,
			MintA:   f.mintA,
			MintB:   f.mintB,
			Receive: 30,
			Bump:    bump,
		}
		opened, err := f.ctrl.Open(f.signed(f.maker), f.db, e, f.makerAtaA, 100)
		So(err, ShouldBeNil)
		So(opened, ShouldResemble, addr)

		vault, err := VaultAddress(addr, f.mintA)
		So(err, ShouldBeNil)
		So(f.tokenBalance(t, vault), ShouldEqual, 100)
		So(f.tokenBalance(t, f.makerAtaA), ShouldEqual, 50)

		Convey("The stored record can be loaded", func() {
			loaded, err := f.ctrl.Escrow(f.db, addr)
			So(err, ShouldBeNil)
			So(loaded, ShouldResemble, e)
		})

		Convey("It cannot be opened twice", func() {
			_, err := f.ctrl.Open(f.signed(f.maker), f.db, e, f.makerAtaA, 10)
			So(ErrDuplicateEscrow.Is(err), ShouldBeTrue)
		})

		Convey("When the taker takes it", func() {
			err := f.ctrl.Take(f.signed(f.taker), f.db, addr, e, f.taker, f.takerAtaB)
			So(err, ShouldBeNil)

			Convey("The vault goes to the taker and the maker is paid", func() {
				takerAtaA, err := token.AssociatedAddress(f.taker, f.mintA)
				So(err, ShouldBeNil)
				makerAtaB, err := token.AssociatedAddress(f.maker, f.mintB)
				So(err, ShouldBeNil)
				So(f.tokenBalance(t, takerAtaA), ShouldEqual, 100)
				So(f.tokenBalance(t, makerAtaB), ShouldEqual, 30)
				So(f.tokenBalance(t, f.takerAtaB), ShouldEqual, 50)
			})

			Convey("The escrow is closed for good", func() {
				_, err := f.ctrl.Escrow(f.db, addr)
				So(ErrAlreadyClosed.Is(err), ShouldBeTrue)
				_, err = f.ctrl.Open(f.signed(f.maker), f.db, e, f.makerAtaA, 10)
				So(ErrDuplicateEscrow.Is(err), ShouldBeTrue)
			})
		})

		Convey("When the maker refunds it", func() {
			err := f.ctrl.Refund(f.signed(f.maker), f.db, addr, e)
			So(err, ShouldBeNil)
			So(f.tokenBalance(t, f.makerAtaA), ShouldEqual, 150)

			_, err = f.ctrl.Escrow(f.db, addr)
			So(ErrAlreadyClosed.Is(err), ShouldBeTrue)
		})
	})
}
