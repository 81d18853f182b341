package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// mysqlSteps is the full migration ladder for the MySQL dialect, one
// entry per version from 1 through TargetVersion. Versions 10 and 11
// add the legacy serialized metadata/resource blob columns that an
// older binary wrote to mt_cds_object directly; versions 12 and 13
// parse those blobs into the mt_metadata and grb_cds_resource side
// tables and drop the blob columns once migrated, which is why those
// two steps carry a DataMigration hook instead of being pure DDL.
var mysqlSteps = []Step{
	{
		Version:     1,
		Description: "initial object tree",
		Statements: []string{
			`CREATE TABLE mt_cds_object (
				id INT NOT NULL AUTO_INCREMENT,
				parent_id INT NOT NULL DEFAULT 0,
				object_type INT UNSIGNED NOT NULL,
				title VARCHAR(768) NOT NULL,
				location TEXT,
				PRIMARY KEY (id),
				KEY ix_parent_id (parent_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE mt_internal_setting (
				` + "`key`" + ` VARCHAR(64) NOT NULL,
				` + "`value`" + ` VARCHAR(255) NOT NULL,
				PRIMARY KEY (` + "`key`" + `)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`INSERT INTO mt_internal_setting (` + "`key`, `value`" + `) VALUES ('db_version', '1')`,
		},
	},
	{
		Version:     2,
		Description: "upnp class",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN upnp_class VARCHAR(80) NOT NULL DEFAULT ''`,
		},
	},
	{
		Version:     3,
		Description: "mime type",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN mime_type VARCHAR(128) NOT NULL DEFAULT ''`,
		},
	},
	{
		Version:     4,
		Description: "reference ids for virtual aliases",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN ref_id INT NULL`,
			`ALTER TABLE mt_cds_object ADD KEY ix_ref_id (ref_id)`,
		},
	},
	{
		Version:     5,
		Description: "per-container update ids",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN update_id INT NOT NULL DEFAULT 0`,
		},
	},
	{
		Version:     6,
		Description: "object flag bitmask",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN flags INT UNSIGNED NOT NULL DEFAULT 0`,
		},
	},
	{
		Version:     7,
		Description: "service id secondary key",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN service_id VARCHAR(255) NULL`,
			`ALTER TABLE mt_cds_object ADD KEY ix_service_id (service_id)`,
		},
	},
	{
		Version:     8,
		Description: "autoscan directories",
		Statements: []string{
			`CREATE TABLE mt_autoscan (
				obj_id INT NOT NULL,
				scan_mode VARCHAR(16) NOT NULL,
				scan_level VARCHAR(16) NOT NULL,
				recursive TINYINT(1) NOT NULL DEFAULT 0,
				hidden TINYINT(1) NOT NULL DEFAULT 0,
				` + "`interval`" + ` INT NOT NULL DEFAULT 0,
				last_modified BIGINT NOT NULL DEFAULT 0,
				persistent TINYINT(1) NOT NULL DEFAULT 0,
				PRIMARY KEY (obj_id, scan_mode)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
	},
	{
		Version:     9,
		Description: "configuration value overrides",
		Statements: []string{
			`CREATE TABLE grb_config_value (
				item VARCHAR(255) NOT NULL,
				` + "`key`" + ` VARCHAR(255) NOT NULL,
				` + "`value`" + ` TEXT NOT NULL,
				status VARCHAR(16) NOT NULL DEFAULT 'unchanged',
				PRIMARY KEY (item, ` + "`key`" + `)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
	},
	{
		Version:     10,
		Description: "legacy serialized object metadata blob",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN metadata_blob TEXT NULL`,
		},
	},
	{
		Version:     11,
		Description: "legacy serialized resource blob",
		Statements: []string{
			`ALTER TABLE mt_cds_object ADD COLUMN resources_blob TEXT NULL`,
		},
	},
	{
		Version:     12,
		Description: "split object metadata into mt_metadata",
		Statements: []string{
			`CREATE TABLE mt_metadata (
				object_id INT NOT NULL,
				property_name VARCHAR(255) NOT NULL,
				property_value TEXT NOT NULL,
				KEY ix_object_id (object_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
		DataMigration: migrateMetadataBlobToTable,
	},
	{
		Version:     13,
		Description: "split resources into grb_cds_resource, add dynamic flag column",
		Statements: []string{
			`CREATE TABLE grb_cds_resource (
				object_id INT NOT NULL,
				res_id INT NOT NULL DEFAULT 0,
				mimetype VARCHAR(128) NULL,
				protocol_info VARCHAR(255) NULL,
				size BIGINT NULL,
				duration VARCHAR(32) NULL,
				bitrate INT NULL,
				sample_frequency INT NULL,
				nr_audio_channels INT NULL,
				resolution VARCHAR(32) NULL,
				color_depth INT NULL,
				rights VARCHAR(255) NULL,
				PRIMARY KEY (object_id, res_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`ALTER TABLE mt_cds_object ADD COLUMN is_dynamic TINYINT(1) NOT NULL DEFAULT 0`,
		},
		DataMigration: migrateResourcesBlobToTable,
	},
}

// resourceBlobColumns is the set of field names migrateResourcesBlobToTable
// accepts from a legacy resource blob, one per grb_cds_resource column
// beyond the (object_id, res_id) key it parses out separately.
var resourceBlobColumns = map[string]bool{
	"mimetype":          true,
	"protocol_info":     true,
	"size":              true,
	"duration":          true,
	"bitrate":           true,
	"sample_frequency":  true,
	"nr_audio_channels": true,
	"resolution":        true,
	"color_depth":       true,
	"rights":            true,
}

// migrateMetadataBlobToTable parses every object's legacy metadata_blob
// ("dc:title=Foo,dc:creator=Bar") into one mt_metadata row per
// property, then drops the now-empty column.
func migrateMetadataBlobToTable(exec Execer) error {
	res, err := exec.Select(`SELECT id, metadata_blob FROM mt_cds_object WHERE metadata_blob IS NOT NULL AND metadata_blob <> ''`)
	if err != nil {
		return fmt.Errorf("select legacy metadata blobs: %w", err)
	}
	defer res.Close()

	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		id, hasID := row.Col(0)
		blob, _ := row.Col(1)
		if !hasID || id == "" || blob == "" {
			continue
		}
		for prop, val := range parseBlobFields(blob) {
			if prop == "" {
				continue
			}
			stmt := fmt.Sprintf(
				"INSERT INTO mt_metadata (object_id, property_name, property_value) VALUES (%s, %s, %s)",
				id, quoteMigrationString(prop), quoteMigrationString(val),
			)
			if _, err := exec.Exec(stmt, false); err != nil {
				return fmt.Errorf("insert mt_metadata for object %s property %s: %w", id, prop, err)
			}
		}
	}

	if _, err := exec.Exec(`ALTER TABLE mt_cds_object DROP COLUMN metadata_blob`, false); err != nil {
		return fmt.Errorf("drop metadata_blob: %w", err)
	}
	return nil
}

// migrateResourcesBlobToTable parses every object's legacy
// resources_blob into one grb_cds_resource row per resource. A blob
// holds one or more resources separated by ";"; each resource is a
// comma-separated key=value field list, e.g. "id=0,mimetype=audio/mp3".
// The "id" field becomes res_id (defaulting to the resource's ordinal
// position within the blob when absent); every other recognized field
// maps directly to its same-named grb_cds_resource column.
func migrateResourcesBlobToTable(exec Execer) error {
	res, err := exec.Select(`SELECT id, resources_blob FROM mt_cds_object WHERE resources_blob IS NOT NULL AND resources_blob <> ''`)
	if err != nil {
		return fmt.Errorf("select legacy resource blobs: %w", err)
	}
	defer res.Close()

	for {
		row, ok := res.Next()
		if !ok {
			break
		}
		objID, hasID := row.Col(0)
		blob, _ := row.Col(1)
		if !hasID || objID == "" || blob == "" {
			continue
		}
		for ordinal, resourceText := range strings.Split(blob, ";") {
			resourceText = strings.TrimSpace(resourceText)
			if resourceText == "" {
				continue
			}
			fields := parseBlobFields(resourceText)

			resID := strconv.Itoa(ordinal)
			if id, present := fields["id"]; present {
				resID = id
			}
			delete(fields, "id")

			cols := []string{"object_id", "res_id"}
			vals := []string{objID, resID}
			for key, val := range fields {
				if !resourceBlobColumns[key] {
					return fmt.Errorf("object %s: unrecognized resource blob field %q", objID, key)
				}
				cols = append(cols, key)
				vals = append(vals, quoteMigrationString(val))
			}

			stmt := fmt.Sprintf("INSERT INTO grb_cds_resource (%s) VALUES (%s)",
				strings.Join(cols, ", "), strings.Join(vals, ", "))
			if _, err := exec.Exec(stmt, false); err != nil {
				return fmt.Errorf("insert grb_cds_resource for object %s: %w", objID, err)
			}
		}
	}

	if _, err := exec.Exec(`ALTER TABLE mt_cds_object DROP COLUMN resources_blob`, false); err != nil {
		return fmt.Errorf("drop resources_blob: %w", err)
	}
	return nil
}

// parseBlobFields splits a comma-separated "key=value" field list from
// a legacy blob column. Fields without an "=" are skipped.
func parseBlobFields(text string) map[string]string {
	out := map[string]string{}
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		key, val, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return out
}

// quoteMigrationString escapes a literal for the handful of
// hand-assembled INSERT statements the data migrations issue. Data
// migrations run before a dialect.Emitter necessarily exists for the
// target version's new tables, so they can't route through
// dialect.Quoter; this mirrors only the single-quote/backslash cases
// that matter for values sourced from this binary's own prior columns.
func quoteMigrationString(value string) string {
	if value == "" {
		return "NULL"
	}
	escaped := ""
	for _, r := range value {
		if r == '\'' || r == '\\' {
			escaped += string('\\')
		}
		escaped += string(r)
	}
	return "'" + escaped + "'"
}
