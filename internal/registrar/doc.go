// Package registrar registers, removes, unexports and queries one device
// server instance in a device registry.
//
// A Registrar is built once per invocation from a loaded instance file and a
// registry Client. It keeps no state between invocations and performs the
// remote calls of an action strictly in sequence:
//
//	add       PutDeviceProperties, then AddDevice
//	remove    DeleteServer (the device record itself is left to the registry)
//	unexport  ImportDevice, then UnexportServer only if the device is exported
//	status    ImportDevice
//
// Earlier calls of a failed action are not rolled back.
//
// After each action an Event is handed to the optional Publisher and
// Recorder. Both are best-effort and never change the action's outcome.
package registrar
