package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"tvguide/internal/guide"
	"tvguide/models"
	"tvguide/utils/timeutil"
)

// XMLTV structures for parsing
type xmltvChannel struct {
	ID          string      `xml:"id,attr"`
	DisplayName []xmltvLang `xml:"display-name"`
	Icon        []xmltvIcon `xml:"icon"`
}

type xmltvProgramme struct {
	Start    string         `xml:"start,attr"`
	Stop     string         `xml:"stop,attr"`
	Channel  string         `xml:"channel,attr"`
	Title    []xmltvLang    `xml:"title"`
	SubTitle []xmltvLang    `xml:"sub-title"`
	Desc     []xmltvLang    `xml:"desc"`
	Category []xmltvLang    `xml:"category"`
	EpNum    []xmltvEpisode `xml:"episode-num"`
	Icon     []xmltvIcon    `xml:"icon"`
	Rating   []xmltvRating  `xml:"rating"`
	New      *struct{}      `xml:"new"`
	Premiere *xmltvLang     `xml:"premiere"`
}

type xmltvLang struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

type xmltvIcon struct {
	Src string `xml:"src,attr"`
}

type xmltvEpisode struct {
	System string `xml:"system,attr"`
	Value  string `xml:",chardata"`
}

type xmltvRating struct {
	System string    `xml:"system,attr"`
	Value  xmltvLang `xml:"value"`
}

var lcnPattern = regexp.MustCompile(`^\d+$`)

// parseXMLTV streams an XMLTV document into schedule. Programmes with
// unparseable times are skipped and recorded in the returned report.
func parseXMLTV(reader io.Reader, schedule *models.EPGSchedule) (guide.Report, error) {
	var report guide.Report
	decoder := xml.NewDecoder(reader)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("parse XML: %w", err)
		}

		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "channel":
			var ch xmltvChannel
			if err := decoder.DecodeElement(&ch, &se); err != nil {
				log.Printf("[epg] error parsing channel: %v", err)
				continue
			}
			// Normalize channel ID to lowercase to merge duplicates
			id := strings.ToLower(strings.TrimSpace(ch.ID))
			if id == "" {
				continue
			}
			channel := models.EPGChannel{ID: id}
			for _, dn := range ch.DisplayName {
				v := strings.TrimSpace(dn.Value)
				switch {
				case v == "":
				case lcnPattern.MatchString(v) && channel.Number == "":
					channel.Number = v
				case channel.Name.Clean == "":
					channel.Name.Clean = v
				case channel.Name.Real == "":
					channel.Name.Real = v
				}
			}
			if channel.Name.Clean == "" {
				channel.Name.Clean = ch.ID
			}
			if len(ch.Icon) > 0 {
				channel.Logo.Light = ch.Icon[0].Src
			}
			schedule.Channels[id] = channel

		case "programme":
			var prog xmltvProgramme
			if err := decoder.DecodeElement(&prog, &se); err != nil {
				log.Printf("[epg] error parsing programme: %v", err)
				continue
			}

			index := report.Total
			report.Total++
			title := getFirstLangValue(prog.Title)

			start, err := timeutil.ParseXMLTV(prog.Start)
			if err != nil {
				report.Skipped++
				report.Issues = append(report.Issues, guide.Issue{Index: index, Title: title, Field: "start", Value: prog.Start, Err: err.Error()})
				continue
			}
			stop, err := timeutil.ParseXMLTV(prog.Stop)
			if err != nil {
				report.Skipped++
				report.Issues = append(report.Issues, guide.Issue{Index: index, Title: title, Field: "stop", Value: prog.Stop, Err: err.Error()})
				continue
			}

			channelID := strings.ToLower(strings.TrimSpace(prog.Channel))
			program := models.Program{
				ChannelID:   channelID,
				Title:       title,
				Subtitle:    getFirstLangValue(prog.SubTitle),
				Description: getFirstLangValue(prog.Desc),
				Start:       start,
				End:         stop,
				New:         prog.New != nil,
				Premiere:    prog.Premiere != nil,
			}

			for _, cat := range prog.Category {
				if v := strings.TrimSpace(cat.Value); v != "" {
					program.Categories = append(program.Categories, v)
				}
			}

			for _, ep := range prog.EpNum {
				if ep.System == "onscreen" && ep.Value != "" {
					program.Episode = strings.TrimSpace(ep.Value)
					break
				}
				if ep.System == "xmltv_ns" && ep.Value != "" {
					program.Episode = parseXMLTVNSEpisode(ep.Value)
				}
			}

			if len(prog.Icon) > 0 {
				program.Icon = prog.Icon[0].Src
			}
			if len(prog.Rating) > 0 {
				program.Rating = strings.TrimSpace(prog.Rating[0].Value.Value)
			}

			schedule.Programs[channelID] = append(schedule.Programs[channelID], program)
		}
	}

	for channelID := range schedule.Programs {
		guide.SortByStart(schedule.Programs[channelID])
	}

	return report, nil
}

// getFirstLangValue returns the first non-empty value from a slice of lang values.
func getFirstLangValue(values []xmltvLang) string {
	for _, v := range values {
		if s := strings.TrimSpace(v.Value); s != "" {
			return s
		}
	}
	return ""
}

// parseXMLTVNSEpisode parses xmltv_ns episode format (season.episode.part) to human readable.
func parseXMLTVNSEpisode(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return s
	}

	season := 0
	episode := 0

	// Season and episode are 0-based in xmltv_ns
	if parts[0] != "" {
		fmt.Sscanf(parts[0], "%d", &season)
		season++
	}
	if parts[1] != "" {
		epParts := strings.Split(parts[1], "/")
		fmt.Sscanf(epParts[0], "%d", &episode)
		episode++
	}

	if season > 0 && episode > 0 {
		return fmt.Sprintf("S%02dE%02d", season, episode)
	} else if episode > 0 {
		return fmt.Sprintf("E%02d", episode)
	}

	return s
}
