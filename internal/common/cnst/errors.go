package cnst

import "errors"

var (
	// ErrUnknownPolicyMode is returned for a policy mode name that is not defined
	ErrUnknownPolicyMode = errors.New("unknown policy mode")
	// ErrUnknownStorageType is returned when a store factory gets an unsupported type
	ErrUnknownStorageType = errors.New("unsupported storage type")
	// ErrUnknownDatabaseType is returned for a database type without a gorm dialector
	ErrUnknownDatabaseType = errors.New("unsupported database type")
	// ErrInvalidPeriod is returned for a costs period that is not defined
	ErrInvalidPeriod = errors.New("invalid period")
)
