package sessions

// Repo is the session store. Get creates an empty session on first access.
// Update applies the mutation as a single atomic read-modify-write and
// returns the resulting session; concurrent updates to the same session
// serialize, updates to different sessions never interact.
type Repo interface {
	Get(sessionID string) (Session, error)
	Update(sessionID string, mutate func(*Session)) (Session, error)
	Destroy(sessionID string) error
}
