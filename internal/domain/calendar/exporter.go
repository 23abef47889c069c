package calendar

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
)

// Exported files use CRLF line endings per the calendar exchange format.
const lineEnding = "\r\n"

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Export serializes a document snapshot into calendar exchange text:
// one VEVENT per schedule block across all days, times emitted as
// floating local wall-clock values with no timezone conversion. Output
// is byte-identical across calls on an unchanged document except for
// the random disambiguator inside each UID.
func Export(doc itinerary.Payload) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//Voyagent//Trip Planner//EN")
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(doc.Request.Destination))

	for _, day := range doc.Days {
		for _, block := range day.Blocks {
			writeLine(&b, "BEGIN:VEVENT")
			writeLine(&b, "UID:"+eventUID(day.Date, block.StartTime))
			writeLine(&b, "DTSTART:"+floatingTimestamp(day.Date, block.StartTime))
			writeLine(&b, "DTEND:"+floatingTimestamp(day.Date, block.EndTime))
			writeLine(&b, "SUMMARY:"+escapeText(block.Title))
			writeLine(&b, "DESCRIPTION:"+escapeText(block.Description))
			if block.Location != "" {
				writeLine(&b, "LOCATION:"+escapeText(block.Location))
			}
			writeLine(&b, "STATUS:CONFIRMED")
			writeLine(&b, "END:VEVENT")
		}
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// Filename derives the download name from the destination, collapsing
// every run of non-alphanumeric characters.
func Filename(doc itinerary.Payload) string {
	dest := nonAlphanumeric.ReplaceAllString(doc.Request.Destination, "_")
	dest = strings.Trim(dest, "_")
	if dest == "" {
		dest = "trip"
	}
	return dest + "_itinerary.ics"
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString(lineEnding)
}

// floatingTimestamp concatenates date and wall-clock time without
// normalizing to UTC, so events land on the traveler's local clock.
func floatingTimestamp(date, clock string) string {
	return strings.ReplaceAll(date, "-", "") + "T" + strings.ReplaceAll(clock, ":", "") + "00"
}

// eventUID is write-once and never compared for equality, so the random
// disambiguator only needs to make collisions improbable.
func eventUID(date, clock string) string {
	return floatingTimestamp(date, clock) + "-" + uuid.NewString() + "@voyagent"
}

func escapeText(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return replacer.Replace(text)
}
