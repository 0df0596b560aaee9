// Package domain defines the permission grant model.
//
// Grants are operator-visible switches ("network.weather", "smart_home.lights")
// persisted outside the process so the UI shell or an admin can flip them while
// the assistant runs. A permission that was never granted reads as false.
package domain

// Grant is the persisted state of one permission.
type Grant struct {
	Name    string
	Granted bool
}
