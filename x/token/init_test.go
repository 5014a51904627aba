package token

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/system"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	Convey("Test initializer", t, func() {
		mint, issuer, alice := ledgertest.NewAddress(), ledgertest.NewAddress(), ledgertest.NewAddress()
		genesis := `{
			"token": {"mints": [{
				"address": "` + mint.String() + `",
				"authority": "` + issuer.String() + `",
				"decimals": 9,
				"holders": [{"wallet": "` + alice.String() + `", "amount": 500}]
			}]}
		}`
		var o ledger.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		db := store.MemStore()
		So(system.Initializer{}.FromGenesis(o, db), ShouldBeNil)
		So(Initializer{}.FromGenesis(o, db), ShouldBeNil)

		sys := system.NewController(system.NewBucket())
		ctrl := NewController(x.ProgramAuth{}, sys)

		Convey("Mint is initialized with the total supply", func() {
			m, err := ctrl.Mint(db, mint)
			So(err, ShouldBeNil)
			So(m.Supply, ShouldEqual, 500)
			So(m.Decimals, ShouldEqual, 9)
			So(m.MintAuthority, ShouldResemble, issuer)
		})

		Convey("Holders own associated accounts", func() {
			ata, err := AssociatedAddress(alice, mint)
			So(err, ShouldBeNil)
			bal, err := ctrl.Balance(db, ata)
			So(err, ShouldBeNil)
			So(bal, ShouldEqual, 500)

			acc, err := sys.Account(db, ata)
			So(err, ShouldBeNil)
			rent, err := sys.MinimumBalance(db, AccountLen)
			So(err, ShouldBeNil)
			So(acc.Lamports, ShouldEqual, rent)
		})

		Convey("Loading twice fails", func() {
			So(Initializer{}.FromGenesis(o, db), ShouldNotBeNil)
		})
	})
}
