package valueobjects

import "fmt"

// FileType classifies client uploads.
type FileType string

const (
	FileTypeData     FileType = "data"
	FileTypeDocument FileType = "document"
	FileTypeIRB      FileType = "irb"
	FileTypeOther    FileType = "other"
)

func (t FileType) IsValid() bool {
	switch t {
	case FileTypeData, FileTypeDocument, FileTypeIRB, FileTypeOther:
		return true
	}
	return false
}

func (t FileType) String() string {
	return string(t)
}

func NewFileType(s string) (FileType, error) {
	ft := FileType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("invalid file type: %s", s)
	}
	return ft, nil
}

// DeliverableType classifies analyst uploads.
type DeliverableType string

const (
	DeliverableReport   DeliverableType = "report"
	DeliverableNotebook DeliverableType = "notebook"
	DeliverableCode     DeliverableType = "code"
	DeliverableDataLog  DeliverableType = "data_log"
	DeliverableSOW      DeliverableType = "sow"
	DeliverableQAReport DeliverableType = "qa_report"
)

func (t DeliverableType) IsValid() bool {
	switch t {
	case DeliverableReport, DeliverableNotebook, DeliverableCode,
		DeliverableDataLog, DeliverableSOW, DeliverableQAReport:
		return true
	}
	return false
}

func (t DeliverableType) String() string {
	return string(t)
}

func NewDeliverableType(s string) (DeliverableType, error) {
	dt := DeliverableType(s)
	if !dt.IsValid() {
		return "", fmt.Errorf("invalid deliverable type: %s", s)
	}
	return dt, nil
}
