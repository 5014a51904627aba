package system

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHandler(t *testing.T) {
	alice := ledgertest.NewAddress()
	bob := ledgertest.NewAddress()

	cases := map[string]struct {
		signers        []ledger.Address
		msg            ledger.Msg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantAlice      uint64
		wantBob        uint64
	}{
		"success": {
			signers:   []ledger.Address{alice},
			msg:       &SendMsg{Src: alice, Dest: bob, Lamports: 400},
			wantAlice: 600,
			wantBob:   400,
		},
		"missing signature": {
			signers:        []ledger.Address{bob},
			msg:            &SendMsg{Src: alice, Dest: bob, Lamports: 400},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
			wantAlice:      1000,
		},
		"too poor": {
			signers:        []ledger.Address{alice},
			msg:            &SendMsg{Src: alice, Dest: bob, Lamports: 1001},
			wantDeliverErr: errors.ErrInsufficientAmount,
			wantAlice:      1000,
		},
		"zero amount": {
			signers:        []ledger.Address{alice},
			msg:            &SendMsg{Src: alice, Dest: bob},
			wantCheckErr:   errors.ErrAmount,
			wantDeliverErr: errors.ErrAmount,
			wantAlice:      1000,
		},
		"invalid destination": {
			signers:        []ledger.Address{alice},
			msg:            &SendMsg{Src: alice, Lamports: 1},
			wantCheckErr:   errors.ErrEmpty,
			wantDeliverErr: errors.ErrEmpty,
			wantAlice:      1000,
		},
		"wrong message": {
			signers:        []ledger.Address{alice},
			msg:            &UpdateConfigurationMsg{Patch: &Configuration{}},
			wantCheckErr:   errors.ErrType,
			wantDeliverErr: errors.ErrType,
			wantAlice:      1000,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := newTestStore(alice, 1000)
			ctrl := NewController(NewBucket())
			h := NewSendHandler(&ledgertest.Auth{Signers: tc.signers}, ctrl)
			tx := &ledgertest.Tx{Msg: tc.msg}

			cache := db.CacheWrap()
			_, err := h.Check(context.TODO(), cache, tx)
			assert.True(t, tc.wantCheckErr.Is(err), "check: %+v", err)
			cache.Discard()

			_, err = h.Deliver(context.TODO(), db, tx)
			assert.True(t, tc.wantDeliverErr.Is(err), "deliver: %+v", err)

			got, err := ctrl.Balance(db, alice)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, bob)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestConfigHandler(t *testing.T) {
	owner := ledgertest.NewAddress()
	db := newTestStore(owner, 1)
	conf := DefaultConfiguration()
	conf.Owner = owner
	require.NoError(t, gconf.Save(db, configPkg, &conf))

	h := NewConfigHandler(&ledgertest.Auth{Signer: owner})
	tx := &ledgertest.Tx{Msg: &UpdateConfigurationMsg{Patch: &Configuration{LamportsPerByteYear: 1}}}
	_, err := h.Deliver(context.TODO(), db, tx)
	require.NoError(t, err)

	rent, err := NewController(NewBucket()).MinimumBalance(db, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 128*1*2, rent)

	h = NewConfigHandler(&ledgertest.Auth{Signer: ledgertest.NewAddress()})
	_, err = h.Deliver(context.TODO(), db, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
