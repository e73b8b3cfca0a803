// Package profilesvc manages couple profiles: creation and deletion by
// admins, settings edited by the assigned user, the photo gallery, and the
// live counter snapshot computed from the profile's start date.
package profilesvc
