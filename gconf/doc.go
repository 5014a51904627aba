/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension owns a single configuration object, stored under the
"_c:<pkg>" key. The configuration is loaded from the genesis file, from the
"conf" section keyed by the package name, and can later be changed by the
configuration owner with an update message.

Not being able to get a configuration value is a critical condition for the
application. Extensions should fail the transaction when Load returns an
error.
*/
package gconf
