package datamodel_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/frahmantamala/expense-tracker-client/internal/core/datamodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDatamodel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Datamodel Suite")
}

var _ = Describe("Timestamp", func() {
	var jakarta *time.Location

	BeforeEach(func() {
		jakarta = time.FixedZone("WIB", 7*3600)
		datamodel.SetLocation(jakarta)
		DeferCleanup(datamodel.SetLocation, time.Local)
	})

	DescribeTable("accepted API formats",
		func(raw string, year int, month time.Month, day, hour int) {
			ts, err := datamodel.ParseTimestamp(raw)

			Expect(err).NotTo(HaveOccurred())
			Expect(ts.Location()).To(Equal(jakarta))
			Expect(ts.Year()).To(Equal(year))
			Expect(ts.Month()).To(Equal(month))
			Expect(ts.Day()).To(Equal(day))
			Expect(ts.Hour()).To(Equal(hour))
		},
		Entry("naive with microseconds", "2024-01-15T10:30:00.123456", 2024, time.January, 15, 10),
		Entry("naive with a space", "2024-01-15 10:30:00", 2024, time.January, 15, 10),
		Entry("naive minutes only", "2024-01-15T10:30", 2024, time.January, 15, 10),
		Entry("plain date", "2024-01-15", 2024, time.January, 15, 0),
		Entry("RFC3339 converted to the display zone", "2024-01-31T20:00:00Z", 2024, time.February, 1, 3),
	)

	It("should bucket an offset date into the display zone's month", func() {
		// Given a UTC evening that is already the next month in the display zone
		ts, err := datamodel.ParseTimestamp("2024-01-31T20:00:00Z")
		Expect(err).NotTo(HaveOccurred())

		// When
		year, month := ts.YearMonth()

		// Then
		Expect(year).To(Equal(2024))
		Expect(month).To(Equal(1))
	})

	It("should reject unrecognised dates", func() {
		_, err := datamodel.ParseTimestamp("15/01/2024")

		Expect(err).To(MatchError(ContainSubstring("unrecognised date")))
	})

	It("should decode null as the zero value and encode it back as null", func() {
		var payload struct {
			Date datamodel.Timestamp `json:"date"`
		}

		Expect(json.Unmarshal([]byte(`{"date":null}`), &payload)).To(Succeed())
		Expect(payload.Date.IsZero()).To(BeTrue())

		out, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal(`{"date":null}`))
	})

	It("should refuse a numeric date", func() {
		var ts datamodel.Timestamp

		Expect(json.Unmarshal([]byte(`1705312200`), &ts)).To(MatchError(ContainSubstring("date must be a string")))
	})
})
