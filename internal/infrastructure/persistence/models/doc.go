// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and OwnedAggregateModel (id, timestamps, version, agency/account ownership)
// - upload.go: UploadModel with records and rows stored as JSONB
// - account_config.go: AccountConfigModel holding the per-account field mapping
package models
