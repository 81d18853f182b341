package schema

// freshSchemaStatements is the consolidated, final-shape DDL for a
// brand-new database: the tables a fully migrated mysqlSteps ladder
// would produce, minus the legacy flat columns versions 10 and 11 add
// and versions 12/13 later remove. One table differs: grb_cds_resource
// gets one TEXT column per entry of resourceAttrs, not the ladder's
// fixed, typed column set (which includes mimetype). A new install has
// no legacy data to carry forward, so it skips straight to the destination shape instead
// of walking through and then undoing the intermediate ones.
func freshSchemaStatements(resourceAttrs []string) []string {
	resourceCols := ""
	for _, attr := range resourceAttrs {
		resourceCols += ",\n\t\t\t\t" + attr + " TEXT NULL"
	}

	return []string{
		`CREATE TABLE mt_cds_object (
			id INT NOT NULL AUTO_INCREMENT,
			parent_id INT NOT NULL DEFAULT 0,
			ref_id INT NULL,
			object_type INT UNSIGNED NOT NULL,
			upnp_class VARCHAR(80) NOT NULL DEFAULT '',
			title VARCHAR(768) NOT NULL,
			location TEXT,
			mime_type VARCHAR(128) NOT NULL DEFAULT '',
			update_id INT NOT NULL DEFAULT 0,
			flags INT UNSIGNED NOT NULL DEFAULT 0,
			service_id VARCHAR(255) NULL,
			is_dynamic TINYINT(1) NOT NULL DEFAULT 0,
			PRIMARY KEY (id),
			KEY ix_parent_id (parent_id),
			KEY ix_ref_id (ref_id),
			KEY ix_service_id (service_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE mt_metadata (
			object_id INT NOT NULL,
			property_name VARCHAR(255) NOT NULL,
			property_value TEXT NOT NULL,
			KEY ix_object_id (object_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE grb_cds_resource (
			object_id INT NOT NULL,
			res_id INT NOT NULL DEFAULT 0,
			PRIMARY KEY (object_id, res_id)` + resourceCols + `
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE mt_autoscan (
			obj_id INT NOT NULL,
			scan_mode VARCHAR(16) NOT NULL,
			scan_level VARCHAR(16) NOT NULL,
			` + "`recursive`" + ` TINYINT(1) NOT NULL DEFAULT 0,
			hidden TINYINT(1) NOT NULL DEFAULT 0,
			` + "`interval`" + ` INT NOT NULL DEFAULT 0,
			last_modified BIGINT NOT NULL DEFAULT 0,
			persistent TINYINT(1) NOT NULL DEFAULT 0,
			PRIMARY KEY (obj_id, scan_mode)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE grb_config_value (
			item VARCHAR(255) NOT NULL,
			` + "`key`" + ` VARCHAR(255) NOT NULL,
			` + "`value`" + ` TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'unchanged',
			PRIMARY KEY (item, ` + "`key`" + `)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE mt_internal_setting (
			` + "`key`" + ` VARCHAR(64) NOT NULL,
			` + "`value`" + ` VARCHAR(255) NOT NULL,
			PRIMARY KEY (` + "`key`" + `)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
}
