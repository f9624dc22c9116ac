// Package script models the values a script runtime hands to host calls.
//
// Script numbers are float64, strings are string, booleans are bool and
// null is nil. Objects, arrays and functions are the Scriptable types defined
// here. Host values passed through the script side are wrapped in HostObject
// and unwrapped again by the classifier.
package script
