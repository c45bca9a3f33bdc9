package config

const (
	defaultRoot             = "~/consolidation"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60

	defaultRawScore        = 90
	defaultLargeJpegScore  = 75
	defaultJpegScore       = 60
	defaultPngScore        = 65
	defaultHeicScore       = 70
	defaultLargeVideoScore = 70
	defaultVideoScore      = 50
	defaultFormatScore     = 50

	defaultPhotoLargeMB = 5
	defaultVideoLargeMB = 100

	defaultOrganizedBonus  = 10
	defaultMeaningfulBonus = 5
	defaultBackupPenalty   = 10
	defaultJunkPenalty     = 15

	defaultLargeBonusMB  = 50
	defaultMediumBonusMB = 10
	defaultLargeBonus    = 10
	defaultMediumBonus   = 5

	defaultMinFreeSpaceGB      = 100
	defaultMaxDuplicatePercent = 80.0

	defaultParallelJobs     = 4
	defaultProgressInterval = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root: defaultRoot,
		},
		Extensions: Extensions{
			Photos: []string{
				"jpg", "jpeg", "png", "heic", "heif", "gif", "bmp", "tiff", "tif", "webp",
				"cr2", "cr3", "nef", "arw", "dng", "orf", "raf", "rw2", "pef", "srw", "x3f", "raw",
			},
			Videos: []string{
				"mp4", "mov", "avi", "mkv", "m4v", "mpg", "mpeg", "wmv", "3gp", "mts", "m2ts",
			},
		},
		Quality: Quality{
			RawScore:        defaultRawScore,
			LargeJpegScore:  defaultLargeJpegScore,
			JpegScore:       defaultJpegScore,
			PngScore:        defaultPngScore,
			HeicScore:       defaultHeicScore,
			LargeVideoScore: defaultLargeVideoScore,
			VideoScore:      defaultVideoScore,
			DefaultScore:    defaultFormatScore,
			PhotoLargeMB:    defaultPhotoLargeMB,
			VideoLargeMB:    defaultVideoLargeMB,
			OrganizedBonus:  defaultOrganizedBonus,
			MeaningfulBonus: defaultMeaningfulBonus,
			BackupPenalty:   defaultBackupPenalty,
			JunkPenalty:     defaultJunkPenalty,
			LargeBonusMB:    defaultLargeBonusMB,
			MediumBonusMB:   defaultMediumBonusMB,
			LargeBonus:      defaultLargeBonus,
			MediumBonus:     defaultMediumBonus,
			OrganizedKeywords: []string{
				"photos", "pictures", "vacation", "family", "wedding", "trip", "event",
				"2020", "2021", "2022", "2023", "2024",
			},
			MeaningfulKeywords: []string{
				"sorted", "organized", "album", "collection", "edited", "favorites",
			},
			BackupKeywords: []string{
				"backup", "bak", "archive", "old", "copy",
			},
			JunkKeywords: []string{
				"temp", "tmp", "cache", "trash", "recycle", "downloads",
			},
		},
		Safety: Safety{
			MinFreeSpaceGB:      defaultMinFreeSpaceGB,
			MaxDuplicatePercent: defaultMaxDuplicatePercent,
			BackupBeforeRemoval: false,
		},
		Process: Process{
			DryRun:           true,
			ParallelJobs:     defaultParallelJobs,
			ProgressInterval: defaultProgressInterval,
			DateFolders:      false,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
