package migration

import (
	"reflect"

	"github.com/iov-one/quorum/errors"
)

// Migratable is implemented by entities that carry a schema version.
type Migratable interface {
	GetSchema() uint8
	SetSchema(uint8)
}

// Migrator is a function that migrates an entity from version
// requiredVersion-1 to requested version.
type Migrator func(m Migratable) error

// NoModification is a migration function that migrates data that requires no
// change. It should be used to register migrations that do not require any
// modifications.
func NoModification(m Migratable) error {
	return nil
}

func newRegister() *register {
	return &register{
		handlers: make(map[payloadVersion]Migrator),
		latest:   make(map[reflect.Type]uint8),
	}
}

type register struct {
	handlers map[payloadVersion]Migrator
	latest   map[reflect.Type]uint8
}

// payloadVersion references an entity at a given schema version.
type payloadVersion struct {
	payload reflect.Type
	version uint8
}

func entityType(m Migratable) (reflect.Type, error) {
	tp := reflect.TypeOf(m)
	if tp == nil {
		return nil, errors.Wrap(errors.ErrInput, "nil entity")
	}
	for tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	if tp.Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "only struct can be migrated, got %T", m)
	}
	return tp, nil
}

func (r *register) MustRegister(migrationTo uint8, m Migratable, fn Migrator) {
	if err := r.Register(migrationTo, m, fn); err != nil {
		panic(err)
	}
}

func (r *register) Register(migrationTo uint8, m Migratable, fn Migrator) error {
	if migrationTo < 1 {
		return errors.Wrap(errors.ErrInput, "schema versions start with 1")
	}
	tp, err := entityType(m)
	if err != nil {
		return err
	}
	if r.latest[tp] != migrationTo-1 {
		return errors.Wrapf(errors.ErrInput, "%s.%s: version %d registered before %d",
			tp.PkgPath(), tp.Name(), migrationTo, migrationTo-1)
	}
	pv := payloadVersion{payload: tp, version: migrationTo}
	if _, ok := r.handlers[pv]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "already registered: %s.%s:%d", tp.PkgPath(), tp.Name(), migrationTo)
	}
	r.handlers[pv] = fn
	r.latest[tp] = migrationTo
	return nil
}

func (r *register) CurrentSchema(m Migratable) (uint8, error) {
	tp, err := entityType(m)
	if err != nil {
		return 0, err
	}
	v, ok := r.latest[tp]
	if !ok {
		return 0, errors.Wrapf(errors.ErrNotFound, "no schema registered for %s.%s", tp.PkgPath(), tp.Name())
	}
	return v, nil
}

func (r *register) Apply(m Migratable, migrateTo uint8) error {
	tp, err := entityType(m)
	if err != nil {
		return err
	}
	schema := m.GetSchema()
	if schema < 1 {
		return errors.Wrap(errors.ErrInput, "schema versions start with 1")
	}
	if schema > migrateTo {
		return errors.Wrapf(errors.ErrCorruptData, "schema %d is newer than %d", schema, migrateTo)
	}
	for v := schema + 1; v <= migrateTo; v++ {
		migrate, ok := r.handlers[payloadVersion{payload: tp, version: v}]
		if !ok {
			return errors.Wrapf(errors.ErrState, "migration to version %d missing", v)
		}
		if err := migrate(m); err != nil {
			return errors.Wrapf(err, "migration to version %d", v)
		}
		m.SetSchema(v)
	}
	return nil
}

// reg is a globally available register instance that must be used during the
// runtime to register migration handlers.
// Register is declared as a separate type so that it can be tested without
// worrying about the global state.
var reg = newRegister()

// MustRegister registers a migration of given entity type to given schema
// version. It panics on failure.
func MustRegister(migrationTo uint8, m Migratable, fn Migrator) {
	reg.MustRegister(migrationTo, m, fn)
}

// CurrentSchema returns the highest schema version registered for the type
// of given entity.
func CurrentSchema(m Migratable) (uint8, error) {
	return reg.CurrentSchema(m)
}

// Apply updates an entity by applying all missing data migrations. Even a no
// modification migration is updating the schema to point to the latest data
// format version.
//
// Because changes are applied directly on the passed entity, even if this
// function fails some of the data migrations might be applied.
func Apply(m Migratable, migrateTo uint8) error {
	return reg.Apply(m, migrateTo)
}
