package cgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/exmachina-dev/CANopenNode/internal/codegen/meta"
	"github.com/exmachina-dev/CANopenNode/internal/od"
)

// fileInfoKeys are printed in the FILE INFO block in this order.
var fileInfoKeys = []string{"FileName", "FileVersion", "CreationTime", "CreationDate", "CreatedBy"}

const ruleWidth = 80

type storageStruct struct {
	Name       string
	HeaderRule string
	SourceRule string
	Bucket     Bucket
	// Lead, Open and LastSep shape the definition line; ROM lives in flash.
	Lead    string
	Open    string
	LastSep string
}

type fileData struct {
	*Layout
	Ext        string
	FileInfo   []infoLine
	DeviceInfo []infoLine
	Structs    []storageStruct
}

// rule pads a "/***** <title> " comment with stars up to the closing "*/".
func rule(title string) string {
	n := ruleWidth - len("/***** ") - len(title) - len(" */")
	return strings.Repeat("*", max(n, 1))
}

func newFileData(md *meta.Metadata, l *Layout) (*fileData, error) {
	data := &fileData{Layout: l}

	d := md.Directory
	for _, k := range fileInfoKeys {
		v := d.File.Get(k)
		if k == "CreatedBy" && v == "" {
			v = md.CreatedBy
		}
		data.FileInfo = append(data.FileInfo, infoLine{Key: k, Value: v})
	}
	for _, k := range d.Device.Keys {
		data.DeviceInfo = append(data.DeviceInfo, infoLine{Key: k, Value: d.Device.Get(k)})
	}

	for _, m := range od.MemoryTypes() {
		b, err := l.Bucket(m)
		if err != nil {
			return nil, err
		}
		s := storageStruct{
			Name:       m.String(),
			HeaderRule: rule(fmt.Sprintf("Structure for %s variables", m)),
			SourceRule: rule(fmt.Sprintf("Definition for %s variables", m)),
			Bucket:     *b,
			Open:       "{",
			LastSep:    ",",
		}
		if m == od.ROM {
			s.Lead = "   "
			s.Open = "{    //constant variables, stored in flash"
			s.LastSep = ""
		}
		data.Structs = append(data.Structs, s)
	}
	return data, nil
}

func execute(md *meta.Metadata, name, text string, data any) ([]byte, error) {
	t := template.Must(template.New(name).Funcs(tplFuncs(md)).Parse(text))
	template.Must(t.New("banner").Parse(banner))
	template.Must(t.New("hstruct").Parse(headerStructTmpl))
	template.Must(t.New("cstruct").Parse(sourceStructTmpl))

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("exec %s tmpl: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Render substitutes l into the header and source templates.
func Render(md *meta.Metadata, l *Layout) (*Artifacts, error) {
	data, err := newFileData(md, l)
	if err != nil {
		return nil, err
	}

	a := &Artifacts{
		HeaderName: fmt.Sprintf("CO%s_OD.h", md.Reference),
		SourceName: fmt.Sprintf("CO%s_OD.c", md.Reference),
	}

	data.Ext = "h"
	if a.Header, err = execute(md, a.HeaderName, headerTmpl, data); err != nil {
		return nil, err
	}
	data.Ext = "c"
	if a.Source, err = execute(md, a.SourceName, sourceTmpl, data); err != nil {
		return nil, err
	}
	return a, nil
}
