package ledger

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger/errors"
)

// ResultSet is the wire format of query responses. Keys and values are
// returned as two parallel result sets.
//
// Encoded as protobuf message { repeated bytes results = 1; }
type ResultSet struct {
	Results [][]byte
}

const resultsTag = 1<<3 | proto.WireBytes

// Marshal serializes the result set.
func (r *ResultSet) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	for _, res := range r.Results {
		if err := buf.EncodeVarint(resultsTag); err != nil {
			return nil, errors.Wrap(err, "tag")
		}
		if err := buf.EncodeRawBytes(res); err != nil {
			return nil, errors.Wrap(err, "result")
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the protobuf representation. Unknown fields are
// rejected.
func (r *ResultSet) Unmarshal(raw []byte) error {
	r.Results = nil
	for len(raw) > 0 {
		tag, n := proto.DecodeVarint(raw)
		if n == 0 {
			return errors.Wrap(errors.ErrInput, "malformed tag")
		}
		if tag != resultsTag {
			return errors.Wrapf(errors.ErrInput, "unexpected tag %d", tag)
		}
		raw = raw[n:]
		size, n := proto.DecodeVarint(raw)
		if n == 0 || uint64(len(raw)-n) < size {
			return errors.Wrap(errors.ErrInput, "malformed result length")
		}
		raw = raw[n:]
		res := make([]byte, size)
		copy(res, raw[:size])
		r.Results = append(r.Results, res)
		raw = raw[size:]
	}
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrInput, "mismatched result set size")
	}
	mods := make([]Model, len(kref))
	for i := range mods {
		mods[i] = Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty result set")
	}
	return o.Unmarshal(res.Results[0])
}
