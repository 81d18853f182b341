package core

// Table names are contractual: the HTTP front end and scanner rely on
// the on-disk schema using exactly these names.
const (
	TableObject          = "mt_cds_object"
	TableMetadata        = "mt_metadata"
	TableResource        = "grb_cds_resource"
	TableAutoscan        = "mt_autoscan"
	TableConfigValue     = "grb_config_value"
	TableInternalSetting = "mt_internal_setting"
)

// Object column names, shared between the object store and the
// dialect's query emitters so the two never drift apart.
const (
	ColObjectID         = "id"
	ColObjectParentID   = "parent_id"
	ColObjectRefID      = "ref_id"
	ColObjectType       = "object_type"
	ColObjectUpnpClass  = "upnp_class"
	ColObjectTitle      = "title"
	ColObjectLocation   = "location"
	ColObjectMimeType   = "mime_type"
	ColObjectUpdateID   = "update_id"
	ColObjectFlags      = "flags"
	ColObjectServiceID  = "service_id"
)

const (
	ColMetaObjectID = "object_id"
	ColMetaKey      = "property_name"
	ColMetaValue    = "property_value"
)

const (
	ColResObjectID = "object_id"
	ColResID       = "res_id"
)

const (
	ColAutoscanObjectID   = "obj_id"
	ColAutoscanMode       = "scan_mode"
	ColAutoscanLevel      = "scan_level"
	ColAutoscanRecursive  = "recursive"
	ColAutoscanHidden     = "hidden"
	ColAutoscanInterval   = "interval"
	ColAutoscanLastMod    = "last_modified"
	ColAutoscanPersistent = "persistent"
)

const (
	ColConfigItem   = "item"
	ColConfigKey    = "key"
	ColConfigValue  = "value"
	ColConfigStatus = "status"
)

const (
	ColSettingKey   = "key"
	ColSettingValue = "value"
)
