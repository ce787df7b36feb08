package compax

import (
	"testing"
)

func TestLoadProposeNumber(t *testing.T) {
	store := NewInmemStore()
	tests := []struct {
		name    string
		store   StableStore
		setup   func()
		want    uint64
		wantErr bool
	}{
		{name: "fresh store", store: store, setup: func() {}, want: 0},
		{name: "saved number",
			store: store,
			setup: func() {
				if err := saveProposeNumber(store, 7, 12); err != nil {
					t.Fatal(err)
				}
			},
			want: 12},
		{name: "missing key reported as not found", store: &notFoundStore{}, setup: func() {}, want: 0},
		{name: "broken store", store: &failingStore{}, setup: func() {}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			got, err := loadProposeNumber(tt.store, 7)
			if (err != nil) != tt.wantErr {
				t.Fatalf("\nloadProposeNumber() \nerror = %v, \nwantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("\nloadProposeNumber() \ngot = %#+v, \nwanted = %#+v", got, tt.want)
			}
		})
	}
}

// notFoundStore behaves like raft-boltdb on an empty database.
type notFoundStore struct {
	InmemStore
}

func (*notFoundStore) GetUint64(key []byte) (uint64, error) {
	_, err := NewInmemStore().Get(key)
	return 0, err
}

func TestProposeNumberKeyIsPerProposer(t *testing.T) {
	if string(proposeNumberKey(1)) == string(proposeNumberKey(2)) {
		t.Errorf("\nproposers 1 and 2 share key:%s", proposeNumberKey(1))
	}
}
