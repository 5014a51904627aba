package escrow

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTakeRefundRace(t *testing.T) {
	Convey("Given an open escrow", t, func() {
		f := newFixture(t)
		offer := f.makeMsg(t, testSeed, 50, 100)
		_, err := f.deliver(f.maker, offer)
		So(err, ShouldBeNil)

		take := f.takeMsg(t, offer, f.taker, f.takerAtaB)
		refund := f.refundMsg(t, offer)

		Convey("When the taker is first", func() {
			_, err := f.deliver(f.taker, take)
			So(err, ShouldBeNil)

			Convey("The refund fails and changes nothing", func() {
				_, err := f.deliver(f.maker, refund)
				So(ErrAlreadyClosed.Is(err), ShouldBeTrue)
				So(f.tokenBalance(t, f.makerAtaA), ShouldEqual, 50)
				So(f.tokenBalance(t, associated(t, f.taker, f.mintA)), ShouldEqual, 100)
			})
		})

		Convey("When the maker is first", func() {
			_, err := f.deliver(f.maker, refund)
			So(err, ShouldBeNil)

			Convey("The take fails and the taker keeps their tokens", func() {
				_, err := f.deliver(f.taker, take)
				So(ErrAlreadyClosed.Is(err), ShouldBeTrue)
				So(f.tokenBalance(t, f.takerAtaB), ShouldEqual, 80)
				So(f.tokenBalance(t, f.makerAtaA), ShouldEqual, 150)

				_, err = f.sys.Account(f.db, associated(t, f.taker, f.mintA))
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)
			})
		})
	})
}
