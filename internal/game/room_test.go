package game

import "testing"

func TestRoomValidate(t *testing.T) {
	tests := map[string]struct {
		room   Room
		expErr bool
	}{
		"valid": {
			room: Room{Name: "Library", Connections: []string{"entrance"}},
		},
		"valid with gate": {
			room: Room{Name: "Vault", RequiredScore: 500},
		},
		"missing name": {
			room:   Room{},
			expErr: true,
		},
		"negative required score": {
			room:   Room{Name: "Vault", RequiredScore: -1},
			expErr: true,
		},
		"empty connection": {
			room:   Room{Name: "Library", Connections: []string{""}},
			expErr: true,
		},
		"invalid connection id": {
			room:   Room{Name: "Library", Connections: []string{"grand hall"}},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.room.Validate()
			if tc.expErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.expErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
