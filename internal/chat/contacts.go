package chat

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"aqua_chat_client/internal/model"
)

// Reconciler produces the single ordered contact list from the
// directory snapshot, the role-based visibility rules, the pinned
// partner set and the live unread counts. The displayed list is a
// deterministic function of (directory, pinned set, role, search term,
// unread counts).
type Reconciler struct {
	directory UserDirectory
	session   Session
	// unread supplies the current per-sender unread counts, usually
	// UnseenPoller.UnreadCountsBySender. Pure read.
	unread    func() map[string]int
	pageLimit int

	collMu   sync.Mutex
	collator *collate.Collator

	mu     sync.Mutex
	users  []model.User // last directory snapshot
	pinned map[string]struct{}
	detail map[string]model.User // pinned partner detail cache
	search string
}

// NewReconciler builds a reconciler with an empty directory snapshot.
// unread may be nil, in which case all counts are zero.
func NewReconciler(directory UserDirectory, session Session, unread func() map[string]int, pageLimit int) *Reconciler {
	if unread == nil {
		unread = func() map[string]int { return nil }
	}
	return &Reconciler{
		directory: directory,
		session:   session,
		unread:    unread,
		pageLimit: pageLimit,
		collator:  collate.New(language.Und, collate.Loose),
		pinned:    make(map[string]struct{}),
		detail:    make(map[string]model.User),
	}
}

// LoadDirectory replaces the directory snapshot. This is a foreground
// fetch: the error is returned to the caller for user-facing handling.
func (r *Reconciler) LoadDirectory(ctx context.Context) error {
	users, err := r.directory.ListUsers(ctx, r.pageLimit, 0)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	return nil
}

// SetSearch updates the live search term. An empty term returns the
// list to base+pinned mode.
func (r *Reconciler) SetSearch(term string) {
	r.mu.Lock()
	r.search = term
	r.mu.Unlock()
}

// Search returns the current search term.
func (r *Reconciler) Search() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.search
}

// Select records the side effect of opening a conversation: an officer
// selecting a non-admin partner pins that partner for the rest of the
// session and caches their detail, which keeps one-off officer-officer
// conversations visible on subsequent non-search renders. The pinned
// set only grows; it resets with the process.
func (r *Reconciler) Select(ctx context.Context, contact model.Contact) {
	me, ok := r.session.CurrentUser()
	if !ok || me.IsAdmin() || contact.IsAdmin() || contact.ID == me.ID {
		return
	}

	r.mu.Lock()
	r.pinned[contact.ID] = struct{}{}
	r.detail[contact.ID] = contact.User
	r.mu.Unlock()

	// Best-effort detail refresh; the cached projection already
	// suffices for display.
	if fresh, err := r.directory.GetUser(ctx, contact.ID); err == nil {
		r.mu.Lock()
		r.detail[contact.ID] = *fresh
		r.mu.Unlock()
	} else {
		zap.L().Warn("pinned contact detail fetch failed",
			zap.String("contactId", contact.ID), zap.Error(err))
	}
}

// PinnedIDs returns the current pinned partner set.
func (r *Reconciler) PinnedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.pinned))
	for id := range r.pinned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Displayed computes the contact list to render. With a non-empty
// search term the result is exactly the search result set; pinned or
// base contacts that do not match are not shown.
func (r *Reconciler) Displayed(ctx context.Context) ([]model.Contact, error) {
	me, ok := r.session.CurrentUser()
	if !ok {
		return nil, nil
	}

	r.mu.Lock()
	term := r.search
	users := make([]model.User, len(r.users))
	copy(users, r.users)
	pinned := make(map[string]struct{}, len(r.pinned))
	for id := range r.pinned {
		pinned[id] = struct{}{}
	}
	detail := make(map[string]model.User, len(r.detail))
	for id, u := range r.detail {
		detail[id] = u
	}
	r.mu.Unlock()

	counts := r.unread()

	var list []model.Contact
	if strings.TrimSpace(term) != "" {
		matched, err := r.searchUsers(ctx, me, users, term)
		if err != nil {
			return nil, err
		}
		list = annotate(matched, pinned, counts)
	} else {
		list = annotate(baseAndPinned(me, users, pinned, detail), pinned, counts)
	}

	r.sortContacts(list)
	return list, nil
}

// baseAndPinned is the non-search projection: role-scoped base contacts
// unioned with resolved pinned partners, deduplicated first-wins.
func baseAndPinned(me model.User, users []model.User, pinned map[string]struct{}, detail map[string]model.User) []model.User {
	var out []model.User
	seen := make(map[string]struct{})

	// Base: admins see everyone, everyone else sees the admins.
	for _, u := range users {
		if u.ID == me.ID {
			continue
		}
		if !me.IsAdmin() && !u.IsAdmin() {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}

	// Pinned: resolve via the detail cache first, fall back to the
	// directory listing. Self and admins are excluded; admins are
	// already base contacts for non-admin users.
	ids := make([]string, 0, len(pinned))
	for id := range pinned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if id == me.ID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		u, ok := detail[id]
		if !ok {
			for _, du := range users {
				if du.ID == id {
					u, ok = du, true
					break
				}
			}
		}
		if !ok || u.IsAdmin() {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, u)
	}

	return out
}

// searchUsers applies the role-scoped search rules.
func (r *Reconciler) searchUsers(ctx context.Context, me model.User, users []model.User, term string) ([]model.User, error) {
	needle := strings.ToLower(strings.TrimSpace(term))

	if me.IsAdmin() {
		// Admin: local substring match over username, email and the
		// concatenated name, against the already-fetched directory.
		var out []model.User
		for _, u := range users {
			if u.ID == me.ID {
				continue
			}
			if matchesUser(u, needle) {
				out = append(out, u)
			}
		}
		return out, nil
	}

	// Officer: local match restricted to admins...
	var out []model.User
	seen := make(map[string]struct{})
	for _, u := range users {
		if u.ID == me.ID || !u.IsAdmin() {
			continue
		}
		if matchesUser(u, needle) {
			seen[u.ID] = struct{}{}
			out = append(out, u)
		}
	}

	// ...unioned with a server-side email search when the term looks
	// like an email, filtered to officers and excluding self.
	if looksLikeEmail(needle) {
		found, err := r.directory.SearchUsersByEmail(ctx, needle)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if u.ID == me.ID || u.Role != model.RoleOfficer {
				continue
			}
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			out = append(out, u)
		}
	}

	return out, nil
}

func matchesUser(u model.User, needle string) bool {
	if needle == "" {
		return false
	}
	fullName := strings.ToLower(strings.TrimSpace(u.FirstName + " " + u.LastName))
	return strings.Contains(strings.ToLower(u.Username), needle) ||
		strings.Contains(strings.ToLower(u.Email), needle) ||
		strings.Contains(fullName, needle)
}

// looksLikeEmail is the heuristic that gates the server-side search
// path: the term contains both "@" and ".".
func looksLikeEmail(term string) bool {
	return strings.Contains(term, "@") && strings.Contains(term, ".")
}

// annotate projects users into contacts with unread counts and pin
// flags.
func annotate(users []model.User, pinned map[string]struct{}, counts map[string]int) []model.Contact {
	out := make([]model.Contact, 0, len(users))
	for _, u := range users {
		_, isPinned := pinned[u.ID]
		out = append(out, model.Contact{
			User:        u,
			UnreadCount: counts[u.ID],
			Pinned:      isPinned,
		})
	}
	return out
}

// sortContacts orders contacts with unread messages before the rest,
// then by display name under a locale collator within each partition.
// The name tie-break inside the unread partition is a chosen rule, not
// observed backend behavior.
func (r *Reconciler) sortContacts(list []model.Contact) {
	r.collMu.Lock()
	defer r.collMu.Unlock()
	sort.SliceStable(list, func(i, j int) bool {
		ui, uj := list[i].UnreadCount > 0, list[j].UnreadCount > 0
		if ui != uj {
			return ui
		}
		return r.collator.CompareString(list[i].DisplayName(), list[j].DisplayName()) < 0
	})
}
