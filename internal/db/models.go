package db

import "time"

// ScrapeRun maps releases.scrape_runs.
type ScrapeRun struct {
	ScrapeRunID   int64      `gorm:"column:scrape_run_id;primaryKey;autoIncrement"`
	ScrapeRunUUID string     `gorm:"column:scrape_run_uuid;type:uuid;not null;unique"`
	Source        string     `gorm:"column:source;type:text;not null"`
	Status        string     `gorm:"column:status;type:releases.scrape_run_status;not null;default:running"`
	StartedAt     time.Time  `gorm:"column:started_at;type:timestamptz;not null;default:now()"`
	FinishedAt    *time.Time `gorm:"column:finished_at;type:timestamptz"`
	ItemsSeen     int        `gorm:"column:items_seen;type:integer;not null;default:0"`
	ItemsArchived int        `gorm:"column:items_archived;type:integer;not null;default:0"`
	ErrorMessage  *string    `gorm:"column:error_message;type:text"`
}

func (ScrapeRun) TableName() string { return "releases.scrape_runs" }

// ArchivedRelease maps releases.archived_releases. One row per release URL.
type ArchivedRelease struct {
	ArchivedReleaseID   int64      `gorm:"column:archived_release_id;primaryKey;autoIncrement"`
	ArchivedReleaseUUID string     `gorm:"column:archived_release_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	URL                 string     `gorm:"column:url;type:text;not null;unique"`
	Title               string     `gorm:"column:title;type:text;not null"`
	NormalizedTitle     string     `gorm:"column:normalized_title;type:text;not null"`
	Brand               *string    `gorm:"column:brand;type:text"`
	ReleaseAt           *time.Time `gorm:"column:release_at;type:timestamptz"`
	ImageURL            *string    `gorm:"column:image_url;type:text"`
	PriceHint           *string    `gorm:"column:price_hint;type:text"`
	Source              string     `gorm:"column:source;type:text;not null"`
	LastRunUUID         *string    `gorm:"column:last_run_uuid;type:uuid"`
	FirstSeenAt         time.Time  `gorm:"column:first_seen_at;type:timestamptz;not null;default:now()"`
	LastSeenAt          time.Time  `gorm:"column:last_seen_at;type:timestamptz;not null;default:now()"`
}

func (ArchivedRelease) TableName() string { return "releases.archived_releases" }

func autoMigrateModels() []any {
	return []any{
		&ScrapeRun{},
		&ArchivedRelease{},
	}
}
