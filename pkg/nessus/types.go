package nessus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Scan is one entry of GET /scans.
type Scan struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Status               string `json:"status"`
	FolderID             int    `json:"folder_id"`
	LastModificationDate int64  `json:"last_modification_date"`
}

type scanList struct {
	Scans []Scan `json:"scans"`
}

// ScanDetail is the part of GET /scans/{id} the converter reads.
type ScanDetail struct {
	Info struct {
		Name      string `json:"name"`
		Status    string `json:"status"`
		HostCount int    `json:"hostcount"`
	} `json:"info"`
	Vulnerabilities []ScanVulnerability `json:"vulnerabilities"`
}

// ScanVulnerability is a per-plugin summary row of a scan.
type ScanVulnerability struct {
	PluginID   int    `json:"plugin_id"`
	PluginName string `json:"plugin_name"`
	Severity   int    `json:"severity"`
	Count      int    `json:"count"`
}

// PluginDetail is one scan's view of a plugin (GET /scans/{id}/plugins/{pid}).
type PluginDetail struct {
	Info    PluginInfo `json:"info"`
	Outputs []Output   `json:"outputs"`
}

type PluginInfo struct {
	PluginDescription PluginDescription `json:"plugindescription"`
}

type PluginDescription struct {
	Severity         int               `json:"severity"`
	PluginName       string            `json:"pluginname"`
	PluginID         PluginID          `json:"pluginid"`
	PluginFamily     string            `json:"pluginfamily,omitempty"`
	PluginAttributes *PluginAttributes `json:"pluginattributes"`
	// Older scanners put the reference block next to the attributes.
	RefInformation *RefInformation `json:"ref_information,omitempty"`
}

type PluginAttributes struct {
	PluginName      string          `json:"plugin_name,omitempty"`
	Synopsis        string          `json:"synopsis,omitempty"`
	Description     string          `json:"description"`
	Solution        string          `json:"solution,omitempty"`
	RiskInformation RiskInformation `json:"risk_information"`
	SeeAlso         []string        `json:"see_also,omitempty"`
	RefInformation  *RefInformation `json:"ref_information,omitempty"`
}

type RiskInformation struct {
	RiskFactor     string `json:"risk_factor,omitempty"`
	CVSS3Vector    string `json:"cvss3_vector,omitempty"`
	CVSS3BaseScore Score  `json:"cvss3_base_score,omitempty"`
	CVSSVector     string `json:"cvss_vector,omitempty"`
	CVSSBaseScore  Score  `json:"cvss_base_score,omitempty"`
}

type RefInformation struct {
	Ref []Reference `json:"ref"`
}

// Reference is a structured reference family, e.g. all CVE ids of a plugin.
type Reference struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Values struct {
		Value []string `json:"value"`
	} `json:"values"`
}

// Output is one block of plugin output with the hosts it was seen on.
type Output struct {
	Ports         Ports  `json:"ports"`
	PluginOutput  string `json:"plugin_output"`
	Severity      int    `json:"severity,omitempty"`
	HasAttachment int    `json:"has_attachment,omitempty"`
}

type Host struct {
	ID       int    `json:"id,omitempty"`
	Hostname string `json:"hostname"`
}

// PortHosts pairs a port descriptor ("443 / tcp / www") with its hosts.
type PortHosts struct {
	Port  string
	Hosts []Host
}

// Ports keeps the JSON object order of an output's "ports" member.
type Ports []PortHosts

func (p *Ports) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return malformed("ports: expected object, got %v", tok)
	}
	var out Ports
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return malformed("ports: unexpected key %v", tok)
		}
		var hosts []Host
		if err := dec.Decode(&hosts); err != nil {
			return fmt.Errorf("ports[%q]: %w", key, err)
		}
		out = append(out, PortHosts{Port: key, Hosts: hosts})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func (p Ports) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ph := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(ph.Port)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ph.Hosts)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PortDescriptor is the parsed form of "number / protocol / service".
type PortDescriptor struct {
	Number   string
	Protocol string
	Service  string
}

func ParsePort(desc string) (PortDescriptor, error) {
	parts := strings.Split(desc, " / ")
	if len(parts) != 3 {
		return PortDescriptor{}, malformed("port descriptor %q", desc)
	}
	return PortDescriptor{Number: parts[0], Protocol: parts[1], Service: parts[2]}, nil
}

// PluginID accepts both the string and the numeric encodings Nessus uses.
type PluginID string

func (id *PluginID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PluginID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = PluginID(n.String())
	return nil
}

// Score is a CVSS base score. Nessus serialises it as a string.
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return malformed("cvss score %q", raw)
	}
	*s = Score(f)
	return nil
}

// Validate checks the fields the converter cannot do without.
func (d *PluginDetail) Validate() error {
	pd := d.Info.PluginDescription
	if pd.PluginID == "" {
		return malformed("missing info.plugindescription.pluginid")
	}
	if pd.PluginName == "" {
		return malformed("plugin %s: missing pluginname", pd.PluginID)
	}
	if pd.PluginAttributes == nil {
		return malformed("plugin %s: missing pluginattributes", pd.PluginID)
	}
	return nil
}

// References returns the structured reference block wherever the scanner put it.
func (pd *PluginDescription) References() []Reference {
	if pd.PluginAttributes != nil && pd.PluginAttributes.RefInformation != nil {
		return pd.PluginAttributes.RefInformation.Ref
	}
	if pd.RefInformation != nil {
		return pd.RefInformation.Ref
	}
	return nil
}
