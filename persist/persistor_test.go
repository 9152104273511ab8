package persist

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/zeptools/gw-dispatch/actions"
	"github.com/zeptools/gw-dispatch/state"
	"github.com/zeptools/gw-dispatch/store"
)

var testKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

func newTestStore() *store.Store[state.RootState] {
	return store.New(state.Reduce, state.Initial())
}

func login(t *testing.T, st *store.Store[state.RootState], token string) {
	t.Helper()
	_, err := st.Dispatch(context.Background(), actions.Action{
		Type: actions.LoginSuccess,
		Body: map[string]any{"token": token},
	})
	if err != nil {
		t.Fatalf("Dispatch(login) error = %v", err)
	}
}

func TestPersistor_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		conf Conf
	}{
		{"plain", Conf{}},
		{"sealed", Conf{EncryptionKey: testKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewKVStorage(newMemKV(), 0)
			conf := tt.conf
			p, err := NewPersistor(context.Background(), storage, &conf)
			if err != nil {
				t.Fatalf("NewPersistor() error = %v", err)
			}
			st := newTestStore()
			if err = p.Attach(st); err != nil {
				t.Fatalf("Attach() error = %v", err)
			}
			if p.Dirty() {
				t.Fatal("dirty right after Attach")
			}
			login(t, st, "tok-123")
			if !p.Dirty() {
				t.Fatal("not dirty after login")
			}
			if err = p.Flush(context.Background()); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if p.Dirty() {
				t.Fatal("still dirty after Flush")
			}

			raw, _, _ := storage.Load(context.Background(), DefaultKey)
			sealed := !bytes.Contains(raw, []byte("tok-123"))
			if sealed != (tt.conf.EncryptionKey != "") {
				t.Fatalf("payload sealed = %v, stored %q", sealed, raw)
			}

			conf2 := tt.conf
			p2, _ := NewPersistor(context.Background(), storage, &conf2)
			snap, found, err := p2.Rehydrate(context.Background())
			if err != nil || !found {
				t.Fatalf("Rehydrate() = found %v, err %v", found, err)
			}
			if snap.Auth.Token != "tok-123" {
				t.Fatalf("rehydrated token = %q", snap.Auth.Token)
			}
			restored := state.Initial().WithPersisted(snap)
			if std, _ := restored.Tokens(); std != "tok-123" {
				t.Fatalf("restored token = %q", std)
			}
		})
	}
}

func TestPersistor_IgnoresNonWhitelistedChanges(t *testing.T) {
	p, _ := NewPersistor(context.Background(), NewKVStorage(newMemKV(), 0), &Conf{})
	st := newTestStore()
	if err := p.Attach(st); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	_, _ = st.Dispatch(context.Background(), actions.Action{
		Type:    actions.ShowToast,
		Payload: actions.Toast{Message: "hi", Severity: actions.SeveritySuccess},
	})
	if p.Dirty() {
		t.Fatal("toast change marked the snapshot dirty")
	}
}

func TestPersistor_RehydrateEmpty(t *testing.T) {
	p, _ := NewPersistor(context.Background(), NewKVStorage(newMemKV(), 0), &Conf{})
	_, found, err := p.Rehydrate(context.Background())
	if err != nil || found {
		t.Fatalf("Rehydrate() = found %v, err %v", found, err)
	}
}

func TestPersistor_RehydrateWrongKey(t *testing.T) {
	storage := NewKVStorage(newMemKV(), 0)
	p, _ := NewPersistor(context.Background(), storage, &Conf{EncryptionKey: testKey})
	st := newTestStore()
	_ = p.Attach(st)
	login(t, st, "tok")
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	otherKey := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 32))
	p2, _ := NewPersistor(context.Background(), storage, &Conf{EncryptionKey: otherKey})
	if _, _, err := p2.Rehydrate(context.Background()); err == nil {
		t.Fatal("expected error opening with another key")
	}
}

type failingStorage struct {
	Storage
	fail bool
}

func (f *failingStorage) Save(ctx context.Context, key string, payload []byte) error {
	if f.fail {
		return errors.New("boom")
	}
	return f.Storage.Save(ctx, key, payload)
}

func TestPersistor_FailedFlushStaysDirty(t *testing.T) {
	fs := &failingStorage{Storage: NewKVStorage(newMemKV(), 0), fail: true}
	p, _ := NewPersistor(context.Background(), fs, &Conf{})
	st := newTestStore()
	_ = p.Attach(st)
	login(t, st, "tok")
	if err := p.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}
	if !p.Dirty() {
		t.Fatal("failed flush dropped the snapshot")
	}
	fs.fail = false
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("retry Flush() error = %v", err)
	}
	if _, found, _ := fs.Load(context.Background(), DefaultKey); !found {
		t.Fatal("snapshot not saved on retry")
	}
}

func TestPersistor_StopFlushes(t *testing.T) {
	storage := NewKVStorage(newMemKV(), 0)
	p, _ := NewPersistor(context.Background(), storage, &Conf{FlushEverySec: 3600})
	st := newTestStore()
	_ = p.Attach(st)
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Start(); err == nil {
		t.Fatal("second Start() should fail")
	}
	login(t, st, "tok-stop")
	p.Stop()
	select {
	case err := <-p.Done():
		if err != nil {
			t.Fatalf("Done() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("persistor did not finish")
	}
	raw, found, _ := storage.Load(context.Background(), DefaultKey)
	if !found || !bytes.Contains(raw, []byte("tok-stop")) {
		t.Fatalf("stored = %q, found %v", raw, found)
	}
}

func TestNewPersistor_Errors(t *testing.T) {
	if _, err := NewPersistor(context.Background(), nil, &Conf{}); !errors.Is(err, ErrNoStorage) {
		t.Fatalf("nil storage err = %v", err)
	}
	if _, err := NewPersistor(context.Background(), NewKVStorage(newMemKV(), 0), &Conf{EncryptionKey: "short"}); err == nil {
		t.Fatal("expected error for bad key")
	}
}
