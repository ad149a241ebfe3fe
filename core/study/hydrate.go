package study

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core"
)

// Controller keeps the in-memory store and the durable key-value store
// consistent across restarts: it hydrates the store once on startup and
// writes whole collections back after every mutation.
//
// Two states: unhydrated and hydrated. While unhydrated the rest of the
// system must not render or accept mutations; callers block on Ready().
// Once hydrated, write-backs are asynchronous and fire-and-forget: mutators
// never wait for, or observe, durable-store failures. A crash between the
// write-backs of two collections can leave the durable store inconsistent
// until the next full write-back corrects it; that gap is accepted.
type Controller struct {
	store  *Store
	kv     core.KeyValueStore
	logger core.Logger

	hydrated int32
	ready    chan struct{}
	once     sync.Once

	wg sync.WaitGroup // pending write-backs
}

func NewController(store *Store, kv core.KeyValueStore, logger core.Logger) *Controller {
	c := &Controller{
		store:  store,
		kv:     kv,
		logger: logger,
		ready:  make(chan struct{}),
	}
	store.OnPersist(c.writeBack)
	return c
}

// Hydrate loads the four durable keys concurrently and merges every present
// value into the store, overwriting in-memory defaults only for keys that
// returned a value. A failed read is logged and treated as absent; it never
// aborts hydration of the other keys. The controller is hydrated when
// Hydrate returns, whatever the individual outcomes were.
func (c *Controller) Hydrate(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		var usr *User
		if c.load(ctx, KeySessionUser, &usr) && usr != nil {
			c.store.ReplaceSessionUser(usr)
		}
	}()
	go func() {
		defer wg.Done()
		var users []User
		if c.load(ctx, KeyUsers, &users) {
			c.store.ReplaceUsers(users)
		}
	}()
	go func() {
		defer wg.Done()
		var assignments []Assignment
		if c.load(ctx, KeyAssignments, &assignments) {
			c.store.ReplaceAssignments(assignments)
		}
	}()
	go func() {
		defer wg.Done()
		var submissions []Submission
		if c.load(ctx, KeySubmissions, &submissions) {
			c.store.ReplaceSubmissions(submissions)
		}
	}()

	wg.Wait()
	c.once.Do(func() {
		atomic.StoreInt32(&c.hydrated, 1)
		close(c.ready)
	})
}

// load fetches and unmarshals one key into dst. It reports whether a usable
// value was found; failures degrade to "use in-memory defaults".
func (c *Controller) load(ctx context.Context, key string, dst interface{}) bool {
	val, ok, err := c.kv.Load(ctx, key)
	if err != nil {
		c.logger.Warn("hydration: load failed, using defaults", errors.Wrap(err, key))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		c.logger.Warn("hydration: unmarshal failed, using defaults", errors.Wrap(err, key))
		return false
	}
	return true
}

// Ready is closed once hydration has completed.
func (c *Controller) Ready() <-chan struct{} { return c.ready }

// Hydrated reports whether hydration has completed.
func (c *Controller) Hydrated() bool { return atomic.LoadInt32(&c.hydrated) == 1 }

// writeBack is the store's persist hook. Each named collection is marshalled
// from a fresh snapshot and saved whole (no deltas), in its own goroutine.
func (c *Controller) writeBack(keys ...string) {
	if !c.Hydrated() {
		return
	}
	for _, key := range keys {
		key := key
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.persistKey(key)
		}()
	}
}

func (c *Controller) persistKey(key string) {
	var val interface{}
	switch key {
	case KeySessionUser:
		if usr, ok := c.store.SessionUser(); ok {
			val = usr
		} else {
			val = nil // persists as JSON null, mirroring a logged-out session
		}
	case KeyUsers:
		val = c.store.Users()
	case KeyAssignments:
		val = c.store.Assignments()
	case KeySubmissions:
		val = c.store.Submissions()
	default:
		c.logger.Warn("write-back: unknown key " + key)
		return
	}

	data, err := json.Marshal(val)
	if err != nil {
		c.logger.Error("write-back: marshal failed", errors.Wrap(err, key))
		return
	}
	if err := c.kv.Save(context.Background(), key, data); err != nil {
		c.logger.Error("write-back: save failed", errors.Wrap(err, key))
	}
}

// Flush waits for pending write-backs; used at shutdown and in tests.
func (c *Controller) Flush() { c.wg.Wait() }
