package export

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-events/internal/domain/entity"
)

func TestBuildReportPaginates(t *testing.T) {
	var records []*entity.EventRecord
	for day := 1; day <= 3; day++ {
		for i := 0; i < 4; i++ {
			records = append(records, groupRecord(
				"Maplewood",
				fmt.Sprintf("Event %d-%d", day, i),
				entity.NewDate(2025, time.December, day),
				entity.TimeAtMinutes(600+i*30),
			))
		}
	}

	report := BuildReport(records, "Library Events", time.Now(), 8)
	assert.Equal(t, 12, report.TotalEvents)
	require.Len(t, report.Pages, 2, "8 events per page splits 3 four-event days into 2 pages")
	assert.Equal(t, 1, report.Pages[0].Number)
	assert.Len(t, report.Pages[0].Sections, 2)
	assert.Len(t, report.Pages[1].Sections, 1)
}

func TestBuildReportKeepsLibraryIntactAcrossPages(t *testing.T) {
	date := entity.NewDate(2025, time.December, 10)
	var records []*entity.EventRecord
	for i := 0; i < 3; i++ {
		records = append(records, groupRecord("Maplewood", fmt.Sprintf("A%d", i), date, entity.TimeAtMinutes(600+i)))
	}
	for i := 0; i < 3; i++ {
		records = append(records, groupRecord("Oak Park", fmt.Sprintf("B%d", i), date, entity.TimeAtMinutes(600+i)))
	}

	report := BuildReport(records, "Library Events", time.Now(), 4)
	require.Len(t, report.Pages, 2)
	for _, page := range report.Pages {
		for _, section := range page.Sections {
			require.Len(t, section.Libraries, 1, "a library block never splits")
			assert.Len(t, section.Libraries[0].Events, 3)
		}
	}
}

func TestRenderText(t *testing.T) {
	rec := calendarRecord()
	report := BuildReport([]*entity.EventRecord{rec}, "Library Events", time.Date(2025, time.December, 10, 9, 0, 0, 0, time.UTC), 0)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "Library Events\n")
	assert.Contains(t, out, "Saturday, December 13, 2025")
	assert.Contains(t, out, "  Maplewood\n")
	assert.Contains(t, out, "    Lego Club\n")
	assert.Contains(t, out, "10:00am - 11:00am | Community Room | Age: Grades K-2")
	assert.Contains(t, out, "--- Page 1 of 1 ---")
}
