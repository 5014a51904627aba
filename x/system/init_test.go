package system

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	Convey("Test initializer", t, func() {
		alice := ledgertest.NewAddress()
		genesis := `
		{
			"conf": {"system": {"lamports_per_byte_year": 10}},
			"system": {"accounts": [
				{"address": "` + alice.String() + `", "lamports": 5000000}
			]}
		}`
		var o ledger.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		db := store.MemStore()
		var init Initializer
		So(init.FromGenesis(o, db), ShouldBeNil)

		Convey("Accounts are system owned", func() {
			acc, err := NewBucket().Get(db, alice)
			So(err, ShouldBeNil)
			So(acc.Lamports, ShouldEqual, 5000000)
			So(acc.Owner, ShouldResemble, ProgramID)
			So(acc.Data, ShouldBeEmpty)
		})

		Convey("Configuration overlays the defaults", func() {
			var conf Configuration
			So(gconf.Load(db, configPkg, &conf), ShouldBeNil)
			So(conf.LamportsPerByteYear, ShouldEqual, 10)
			So(conf.ExemptionThresholdYears, ShouldEqual, 2)
			So(conf.AccountOverhead, ShouldEqual, 128)
		})
	})

	Convey("Genesis without configuration uses defaults", t, func() {
		db := store.MemStore()
		var init Initializer
		So(init.FromGenesis(ledger.Options{}, db), ShouldBeNil)

		rent, err := NewController(NewBucket()).MinimumBalance(db, 0)
		So(err, ShouldBeNil)
		So(rent, ShouldEqual, 128*3480*2)
	})

	Convey("Duplicated accounts are rejected", t, func() {
		alice := ledgertest.NewAddress()
		genesis := `{"system": {"accounts": [
			{"address": "` + alice.String() + `", "lamports": 1},
			{"address": "` + alice.String() + `", "lamports": 2}
		]}}`
		var o ledger.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)
		var init Initializer
		So(init.FromGenesis(o, store.MemStore()), ShouldNotBeNil)
	})
}
