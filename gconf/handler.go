package gconf

import (
	"context"
	"reflect"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
)

// OwnedConfig is a configuration that names the address allowed to
// change it, such as the rent parameters of the system extension.
type OwnedConfig interface {
	Unmarshaler
	ValidMarshaler
	GetOwner() ledger.Address
}

// UpdateConfigurationHandler applies a partial update to the configuration
// of one extension.
type UpdateConfigurationHandler struct {
	pkg string
	// config is only used as a type template, every call loads a fresh copy.
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(ledger.ReadOnlyKVStore) (ledger.Address, error)
}

var _ ledger.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns the handler of the configuration
// update message of pkg. The message must be signed by the owner recorded
// in the stored configuration.
//
// A chain started without the configuration in genesis has no owner to
// sign the first update. initConfAdmin, when not nil, names the address
// allowed to create it. It is consulted only while no configuration is
// stored.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	initConfAdmin func(ledger.ReadOnlyKVStore) (ledger.Address, error),
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		config:    config,
		auth:      auth,
		initAdmin: initConfAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	if err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) applyTx(ctx context.Context, store ledger.KVStore, tx ledger.Tx) error {
	config := reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)
	if err := h.authorize(ctx, store, config); err != nil {
		return err
	}

	payload, err := patchPayload(tx)
	if err != nil {
		return errors.Wrap(err, "cannot get message payload")
	}
	if err := patch(config, payload); err != nil {
		return errors.Wrap(err, "cannot patch config with message payload")
	}

	if err := Save(store, h.pkg, config); err != nil {
		return errors.Wrap(err, "cannot save updated config")
	}
	return nil
}

// authorize loads the stored configuration into config and checks that the
// transaction is signed by whoever may change it.
func (h UpdateConfigurationHandler) authorize(ctx context.Context, store ledger.KVStore, config OwnedConfig) error {
	var signer ledger.Address
	switch err := Load(store, h.pkg, config); {
	case err == nil:
		signer = config.GetOwner()
		if signer == nil {
			return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
		}
	case errors.ErrNotFound.Is(err):
		// First write, only the initial admin may create it.
		if h.initAdmin == nil {
			return errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be initialized")
		}
		admin, err := h.initAdmin(store)
		if err != nil {
			return errors.Wrap(err, "get init admin")
		}
		signer = admin
	default:
		return errors.Wrap(err, "load current configuration")
	}
	if !h.auth.HasAddress(ctx, signer) {
		return errors.Wrapf(errors.ErrUnauthorized, "configuration change must be signed by %s", signer)
	}
	return nil
}

func patch(config OwnedConfig, payload OwnedConfig) error {
	pType := reflect.TypeOf(payload)
	cType := reflect.TypeOf(config)
	if !pType.ConvertibleTo(cType) {
		return errors.Wrap(errors.ErrMsg, "config in message doesn't match store")
	}

	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()

	for i := 0; i < cval.NumField(); i++ {
		got := pval.Field(i)

		// zero fields keep the stored value
		if isZero(got) {
			continue
		}

		cval.Field(i).Set(got)
	}

	return nil
}

func isZero(val reflect.Value) bool {
	zero := reflect.Zero(val.Type()).Interface()
	return reflect.DeepEqual(val.Interface(), zero)
}

// patchPayload returns the Patch field of the update message. Update
// messages of every extension carry the new values in a pointer field of
// that name.
func patchPayload(tx ledger.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	pval := reflect.ValueOf(msg)
	if pval.Kind() != reflect.Ptr || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "invalid message container value: %T", msg)
	}
	val := pval.Elem()

	field := val.FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInput, "%T has no \"Patch\" field", msg)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrState, `"Patch" field is required`)
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrap(errors.ErrInput, `"Patch" field is of a wrong type`)
	}
	return payload, nil
}
