package ledger

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	raw := make([]byte, AddressLength)
	for i := range raw {
		raw[i] = byte(i)
	}
	addr := Address(raw)
	bech, err := addr.Bech32()
	require.NoError(t, err)

	cases := map[string]struct {
		enc     string
		want    Address
		wantErr *errors.Error
	}{
		"base58": {
			enc:  addr.String(),
			want: addr,
		},
		"hex": {
			enc:  "hex:" + hex.EncodeToString(raw),
			want: addr,
		},
		"bech32": {
			enc:  "bech32:" + bech,
			want: addr,
		},
		"system program": {
			enc:  "11111111111111111111111111111111",
			want: make(Address, AddressLength),
		},
		"short hex": {
			enc:     "hex:0102",
			wantErr: errors.ErrInput,
		},
		"invalid base58": {
			enc:     "0OIl",
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			enc:     "b64:AAAA",
			wantErr: errors.ErrInput,
		},
		"empty": {
			enc:     "",
			wantErr: errors.ErrEmpty,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseAddress(tc.enc)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := MustParseAddress("DWR9pMytrCDtpyzJMC65fEVxvVehujvw6J8htPNFffRG")
	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"DWR9pMytrCDtpyzJMC65fEVxvVehujvw6J8htPNFffRG"`, string(raw))

	var back Address
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, addr.Equals(back))

	var hexed Address
	require.NoError(t, json.Unmarshal([]byte(`"hex:`+hex.EncodeToString(addr)+`"`), &hexed))
	assert.True(t, addr.Equals(hexed))
}

func TestAddressHelpers(t *testing.T) {
	zero := make(Address, AddressLength)
	assert.True(t, zero.IsZero())
	assert.False(t, Address(nil).IsZero())

	a := MustParseAddress("DWR9pMytrCDtpyzJMC65fEVxvVehujvw6J8htPNFffRG")
	c := a.Clone()
	c[0]++
	assert.False(t, a.Equals(c))

	assert.Panics(t, func() { MustParseAddress("hex:00") })
}

func TestAddressFlag(t *testing.T) {
	var a Address
	fl := flag.NewFlagSet("test", flag.ContinueOnError)
	fl.Var(&a, "addr", "")
	require.NoError(t, fl.Parse([]string{"-addr", "DWR9pMytrCDtpyzJMC65fEVxvVehujvw6J8htPNFffRG"}))
	assert.Equal(t, "DWR9pMytrCDtpyzJMC65fEVxvVehujvw6J8htPNFffRG", a.String())

	err := a.Set("hex:0102")
	assert.True(t, errors.ErrInput.Is(err))
}
