package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zeptools/gw-dispatch/sec"
	"github.com/zeptools/gw-dispatch/state"
	"github.com/zeptools/gw-dispatch/svc"
)

const flushTimeout = 5 * time.Second

// Source is the part of the store the Persistor watches
type Source interface {
	GetState() state.RootState
	Subscribe(fn func(state.RootState)) (unsubscribe func())
}

type Persistor struct {
	Ctx    context.Context    // Service Context
	cancel context.CancelFunc // Service Context CancelFunc
	state  int                // internal service state
	done   chan error         // Shutdown Error Channel

	storage  Storage
	key      string
	interval time.Duration
	cipher   *sec.XChaCha20Poly1305Cipher

	mu          sync.Mutex
	snapshot    []byte // JSON of the last observed state.Persisted
	dirty       bool
	unsubscribe func()
}

// Ensure Persistor implements svc.Service
var _ svc.Service = (*Persistor)(nil)

func NewPersistor(parentCtx context.Context, storage Storage, conf *Conf) (*Persistor, error) {
	if storage == nil {
		return nil, ErrNoStorage
	}
	conf.ApplyDefaults()
	p := &Persistor{
		storage:  storage,
		key:      conf.Key,
		interval: conf.Interval(),
		state:    svc.StateREADY,
		done:     make(chan error, 1),
	}
	if conf.EncryptionKey != "" {
		cipher, err := sec.NewXChaCha20Poly1305CipherFromBase64(conf.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("persist: encryption key: %w", err)
		}
		p.cipher = cipher
	}
	p.Ctx, p.cancel = context.WithCancel(parentCtx)
	return p, nil
}

func (p *Persistor) Name() string {
	return "StatePersistor"
}

// Rehydrate loads the saved snapshot. found is false when nothing was saved yet
func (p *Persistor) Rehydrate(ctx context.Context) (snap state.Persisted, found bool, err error) {
	payload, found, err := p.storage.Load(ctx, p.key)
	if err != nil || !found {
		return snap, false, err
	}
	if p.cipher != nil {
		if payload, err = p.cipher.Open(payload, []byte(p.key)); err != nil {
			return snap, false, fmt.Errorf("persist: open snapshot: %w", err)
		}
	}
	if err = json.Unmarshal(payload, &snap); err != nil {
		return snap, false, fmt.Errorf("persist: decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Attach starts watching src. The current state is taken as already saved
func (p *Persistor) Attach(src Source) error {
	b, err := json.Marshal(src.GetState().Persisted())
	if err != nil {
		return err
	}
	p.mu.Lock()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.snapshot = b
	p.dirty = false
	p.unsubscribe = src.Subscribe(p.Observe)
	p.mu.Unlock()
	return nil
}

// Observe marks the snapshot dirty when the whitelisted slices changed
func (p *Persistor) Observe(s state.RootState) {
	b, err := json.Marshal(s.Persisted())
	if err != nil {
		log.Printf("[ERROR][Persist] encode snapshot: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if bytes.Equal(b, p.snapshot) {
		return
	}
	p.snapshot = b
	p.dirty = true
}

// Dirty reports whether a snapshot is waiting to be written
func (p *Persistor) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Flush writes the pending snapshot, if any
func (p *Persistor) Flush(ctx context.Context) error {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	plain := p.snapshot
	p.dirty = false
	p.mu.Unlock()

	payload := plain
	if p.cipher != nil {
		sealed, err := p.cipher.Seal(plain, []byte(p.key))
		if err != nil {
			p.requeue(plain)
			return fmt.Errorf("persist: seal snapshot: %w", err)
		}
		payload = sealed
	}
	if err := p.storage.Save(ctx, p.key, payload); err != nil {
		p.requeue(plain)
		return fmt.Errorf("persist: save snapshot: %w", err)
	}
	return nil
}

// requeue marks a failed write dirty again unless a newer snapshot arrived meanwhile
func (p *Persistor) requeue(plain []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty {
		p.snapshot = plain
		p.dirty = true
	}
}

// Purge removes the saved snapshot
func (p *Persistor) Purge(ctx context.Context) error {
	return p.storage.Remove(ctx, p.key)
}

func (p *Persistor) Start() error {
	if p.state == svc.StateRUNNING {
		return fmt.Errorf("already started")
	}
	if p.state != svc.StateREADY {
		return fmt.Errorf("cannot start. not ready")
	}
	p.state = svc.StateRUNNING
	log.Printf("[INFO][Persist] service started key=%q cycle=%v", p.key, p.interval)
	go p.run()
	return nil
}

func (p *Persistor) Stop() {
	if p.state != svc.StateRUNNING {
		log.Println("[ERROR][Persist] cannot stop. not running")
		return
	}
	p.cancel()
	p.state = svc.StateSTOPPED
	log.Println("[INFO][Persist] service stopped")
}

func (p *Persistor) Done() <-chan error {
	return p.done
}

func (p *Persistor) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.Ctx.Done():
			log.Println("[INFO][Persist] flushing last snapshot")
			p.mu.Lock()
			if p.unsubscribe != nil {
				p.unsubscribe()
				p.unsubscribe = nil
			}
			p.mu.Unlock()
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			err := p.Flush(ctx)
			cancel()
			if err != nil {
				log.Printf("[ERROR][Persist] final flush: %v", err)
			}
			p.done <- err
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Persistor) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] recovered in persist write loop: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(p.Ctx, flushTimeout)
	defer cancel()
	if err := p.Flush(ctx); err != nil {
		log.Printf("[WARN][Persist] %v", err)
	}
}
