package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOwner(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		wantErr bool
		errMsg  string
	}{
		{name: "valid owner - lowercase", owner: "alice"},
		{name: "valid owner - mixed case", owner: "AliceSmith"},
		{name: "valid owner - with underscore and numbers", owner: "alice_smith_42"},
		{name: "valid owner - exactly 3 characters", owner: "bob"},
		{name: "valid owner - exactly 32 characters", owner: strings.Repeat("a", 32)},
		{name: "invalid owner - empty", owner: "", wantErr: true, errMsg: "owner cannot be empty"},
		{name: "invalid owner - too short", owner: "ab", wantErr: true, errMsg: "at least 3 characters"},
		{name: "invalid owner - too long", owner: strings.Repeat("a", 33), wantErr: true, errMsg: "must not exceed 32"},
		{name: "invalid owner - with dash", owner: "alice-smith", wantErr: true, errMsg: "can only contain"},
		{name: "invalid owner - with at sign", owner: "alice@example", wantErr: true, errMsg: "can only contain"},
		{name: "invalid owner - cyrillic", owner: "алиса", wantErr: true, errMsg: "can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOwner(tt.owner)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateNames(t *testing.T) {
	tests := []struct {
		validate func(string) error
		name     string
		value    string
		wantErr  bool
	}{
		{name: "zone", validate: ValidateZoneName, value: "library"},
		{name: "zone with dash", validate: ValidateZoneName, value: "reading-list_2"},
		{name: "zone empty", validate: ValidateZoneName, value: "", wantErr: true},
		{name: "zone with slash", validate: ValidateZoneName, value: "a/b", wantErr: true},
		{name: "zone too long", validate: ValidateZoneName, value: strings.Repeat("z", 65), wantErr: true},
		{name: "subscription", validate: ValidateSubscriptionID, value: "private-changes"},
		{name: "subscription with space", validate: ValidateSubscriptionID, value: "private changes", wantErr: true},
		{name: "record uuid", validate: ValidateRecordName, value: "3f2b6c1e-8a9d-4e5f-b0c1-d2e3f4a5b6c7"},
		{name: "record with dot", validate: ValidateRecordName, value: "book.1"},
		{name: "record empty", validate: ValidateRecordName, value: "", wantErr: true},
		{name: "record with quote", validate: ValidateRecordName, value: `a"b`, wantErr: true},
		{name: "record type", validate: ValidateRecordType, value: "Book"},
		{name: "record type with dot", validate: ValidateRecordType, value: "Book.v2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
