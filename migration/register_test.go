package migration

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

type MyModel struct {
	Schema  uint8
	Content string
}

func (m *MyModel) GetSchema() uint8  { return m.Schema }
func (m *MyModel) SetSchema(v uint8) { m.Schema = v }

func TestZeroMigrationIsNotAllowed(t *testing.T) {
	reg := newRegister()

	if err := reg.Register(0, &MyModel{}, NoModification); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected invalid version registration error: %s", err)
	}
	if err := reg.Apply(&MyModel{}, 1); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected zero schema apply error: %s", err)
	}
}

func TestRegisterMigrationMustBeSequential(t *testing.T) {
	reg := newRegister()

	// Each migration must start with 1.
	if err := reg.Register(2, &MyModel{}, NoModification); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error when missing previous migration: %s", err)
	}

	reg.MustRegister(1, &MyModel{}, NoModification)
	reg.MustRegister(2, &MyModel{}, NoModification)

	if err := reg.Register(4, &MyModel{}, NoModification); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error when missing previous migration: %s", err)
	}
	if err := reg.Register(2, &MyModel{}, NoModification); err == nil {
		t.Fatal("registering a version twice must fail")
	}

	reg.MustRegister(3, &MyModel{}, NoModification)

	v, err := reg.CurrentSchema(&MyModel{})
	assert.Nil(t, err)
	assert.Equal(t, uint8(3), v)
}

func TestApply(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)
	reg.MustRegister(2, &MyModel{}, func(m Migratable) error {
		m.(*MyModel).Content += "to2"
		return nil
	})
	reg.MustRegister(3, &MyModel{}, NoModification)
	reg.MustRegister(4, &MyModel{}, func(m Migratable) error {
		m.(*MyModel).Content += "to4"
		return nil
	})

	model := &MyModel{Schema: 1, Content: "init "}

	// Running a migration can bring it up to any state in the future.
	assert.Nil(t, reg.Apply(model, 3))
	assert.Equal(t, uint8(3), model.Schema)
	assert.Equal(t, "init to2", model.Content)

	assert.Nil(t, reg.Apply(model, 4))
	assert.Equal(t, uint8(4), model.Schema)
	assert.Equal(t, "init to2to4", model.Content)

	// Applying the current schema is a no-op.
	assert.Nil(t, reg.Apply(model, 4))
	assert.Equal(t, "init to2to4", model.Content)
}

func TestApplyNewerSchema(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)

	model := &MyModel{Schema: 2}
	assert.IsErr(t, errors.ErrCorruptData, reg.Apply(model, 1))
}

func TestMigrateUnknownVersion(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)
	reg.MustRegister(2, &MyModel{}, NoModification)
	reg.MustRegister(3, &MyModel{}, NoModification)

	model := &MyModel{Schema: 1}

	// Migration attempt to a non existing version must fail. It will
	// upgrade the entity to the highest available state.
	if err := reg.Apply(model, 99); !errors.ErrState.Is(err) {
		t.Fatalf("unexpected migration failure: %s", err)
	}
	assert.Equal(t, uint8(3), model.Schema)
}

func TestMigrationFailure(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)
	reg.MustRegister(2, &MyModel{}, func(Migratable) error {
		return errors.Wrap(errors.ErrCorruptData, "cannot translate")
	})

	model := &MyModel{Schema: 1}
	assert.IsErr(t, errors.ErrCorruptData, reg.Apply(model, 2))
	assert.Equal(t, uint8(1), model.Schema)
}
