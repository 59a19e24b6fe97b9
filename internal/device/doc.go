// Package device holds the device-registry vocabulary shared by the
// registrar and its registry clients, plus a registry client that talks to
// the device database directly.
//
// # Key Types
//
//   - Descriptor: what gets registered (name, class, server)
//   - DeviceInfo: what the registry returns when a device is imported
//   - PropertyValue: a property value, either a single string or a list
//   - Properties: the property set sent with a registration
//
// # Database client
//
// SQLiteRepository stores device records, their properties and export
// state in the SQLite schema under migrations/. Properties are keyed by
// device name and can be written before the device is registered.
//
//	repo := device.NewSQLiteRepository(db.DB)
//	if err := repo.PutDeviceProperties(ctx, "lab/motor/1", props); err != nil {
//	    return err
//	}
//	if err := repo.AddDevice(ctx, desc); err != nil {
//	    return err
//	}
//
// Deleting a server removes its device rows but leaves their properties in
// place, the way a device database keeps properties across re-registration.
package device
