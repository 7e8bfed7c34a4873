/*
Package migration provides tooling necessary for working with schema versioned
entities stored in fixed-width layouts.

A fixed-width layout has no room to grow without breaking the byte offsets
of data that is already stored. Instead, a layout reserves a single schema
byte after its payload. When an entity is decoded and its schema byte is
older than the current schema, registered migration functions translate the
decoded entity, one version at a time, up to the current schema.

Register migrations in package init. Schema versions start with 1 and must
be registered without gaps. Use NoModification for versions that only bump
the schema number.

	func init() {
	    migration.MustRegister(1, &Registry{}, migration.NoModification)
	}
*/
package migration
