package store

// archiveTable holds one row per archived course record. Rows are only ever
// inserted; each Archive call tags its rows with a fresh batch id.
const archiveTable = "course_records"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS course_records (
	batch_id                       uuid             NOT NULL,
	imported_at                    timestamptz      NOT NULL,
	institution                    text,
	course_number                  text,
	launch_date                    date,
	course_title                   text,
	instructors                    text,
	course_subject                 text,
	year                           integer          NOT NULL,
	honor_code_certificates        integer          NOT NULL,
	participants                   integer          NOT NULL,
	audited                        integer          NOT NULL,
	certified                      integer          NOT NULL,
	audited_pct                    double precision NOT NULL,
	certified_pct                  double precision NOT NULL,
	certified_of_audited_pct       double precision NOT NULL,
	played_video_pct               double precision NOT NULL,
	posted_in_forum_pct            double precision NOT NULL,
	grade_above_zero_pct           double precision NOT NULL,
	total_course_hours             double precision NOT NULL,
	median_hours_for_certification double precision NOT NULL,
	median_age                     double precision NOT NULL,
	male_pct                       double precision NOT NULL,
	female_pct                     double precision NOT NULL,
	bachelor_or_higher_pct         double precision NOT NULL,
	independent                    boolean          NOT NULL
);
CREATE INDEX IF NOT EXISTS course_records_batch_id_idx ON course_records (batch_id);
CREATE INDEX IF NOT EXISTS course_records_course_number_idx ON course_records (course_number);
`

// archiveColumns lists the COPY target columns in copyRow order.
var archiveColumns = []string{
	"batch_id",
	"imported_at",
	"institution",
	"course_number",
	"launch_date",
	"course_title",
	"instructors",
	"course_subject",
	"year",
	"honor_code_certificates",
	"participants",
	"audited",
	"certified",
	"audited_pct",
	"certified_pct",
	"certified_of_audited_pct",
	"played_video_pct",
	"posted_in_forum_pct",
	"grade_above_zero_pct",
	"total_course_hours",
	"median_hours_for_certification",
	"median_age",
	"male_pct",
	"female_pct",
	"bachelor_or_higher_pct",
	"independent",
}
