package core

import "time"

// ScanMode selects how an autoscan directory is watched.
type ScanMode string

const (
	ScanModeTimed   ScanMode = "timed"
	ScanModeInotify ScanMode = "inotify"
)

// ScanLevel controls how deeply a rescan inspects a directory.
type ScanLevel string

const (
	ScanLevelBasic ScanLevel = "basic"
	ScanLevelFull  ScanLevel = "full"
)

// AutoscanDirectory is a user-declared watch on an object subtree.
type AutoscanDirectory struct {
	ObjectID     int
	ScanMode     ScanMode
	Level        ScanLevel
	Recursive    bool
	HiddenFiles  bool
	Interval     time.Duration
	LastModified time.Time
	Persistent   bool
}

// InternalSetting is an opaque (key, value) pair the store uses for its
// own bookkeeping, principally the schema version.
type InternalSetting struct {
	Key   string
	Value string
}

const InternalSettingSchemaVersion = "db_version"

// InternalSettingSchemaHash stores the FNV-1a hash of the currently
// recorded schema version's DDL, checked at startup against the hash
// the running binary carries for that version.
const InternalSettingSchemaHash = "db_hash"
