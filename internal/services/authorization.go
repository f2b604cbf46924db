package services

// Requester is the verified identity behind a request.
type Requester struct {
	UserID  string
	IsAdmin bool
}

// Capability is a permission required to perform an operation.
type Capability interface {
	allows(r Requester) bool
	describe() string
}

type adminOnly struct{}

func (adminOnly) allows(r Requester) bool { return r.IsAdmin }
func (adminOnly) describe() string        { return "administrator access required" }

type adminOrOwner struct{ ownerID string }

func (c adminOrOwner) allows(r Requester) bool {
	return r.IsAdmin || (r.UserID != "" && r.UserID == c.ownerID)
}
func (adminOrOwner) describe() string { return "administrator or owner access required" }

// AdminOnly is satisfied by administrators.
func AdminOnly() Capability { return adminOnly{} }

// AdminOrOwner is satisfied by administrators and by the owner of the resource.
func AdminOrOwner(ownerID string) Capability { return adminOrOwner{ownerID: ownerID} }

// Authorize returns a ForbiddenError unless r holds the capability.
func Authorize(r Requester, c Capability) error {
	if c.allows(r) {
		return nil
	}
	return forbiddenError(c.describe())
}

// IsAdministrator reports whether r is an administrator.
func IsAdministrator(r Requester) bool {
	return AdminOnly().allows(r)
}

// IsAdministratorOrOwner reports whether r is an administrator or owns the resource.
func IsAdministratorOrOwner(r Requester, ownerID string) bool {
	return AdminOrOwner(ownerID).allows(r)
}
