package valueobjects

import "fmt"

// Stage is how far along the client's research is.
type Stage string

const (
	StageProposal         Stage = "proposal"
	StageDataAnalysis     Stage = "data_analysis"
	StageLiteratureReview Stage = "literature_review"
	StageMethodology      Stage = "methodology"
	StageFullProject      Stage = "full_project"
)

var validStages = map[Stage]bool{
	StageProposal:         true,
	StageDataAnalysis:     true,
	StageLiteratureReview: true,
	StageMethodology:      true,
	StageFullProject:      true,
}

func (s Stage) IsValid() bool {
	return validStages[s]
}

func (s Stage) String() string {
	return string(s)
}

func NewStage(s string) (Stage, error) {
	st := Stage(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid stage: %s", s)
	}
	return st, nil
}

// SupportType is the kind of help requested.
type SupportType string

const (
	SupportSampleSize           SupportType = "sample_size"
	SupportAnalysisPlan         SupportType = "analysis_plan"
	SupportStatisticalAnalysis  SupportType = "statistical_analysis"
	SupportDataCleaning         SupportType = "data_cleaning"
	SupportMethodologyReview    SupportType = "methodology_review"
	SupportReportWriting        SupportType = "report_writing"
	SupportReproducibleNotebook SupportType = "reproducible_notebook"
	SupportOther                SupportType = "other"
)

var validSupportTypes = map[SupportType]bool{
	SupportSampleSize:           true,
	SupportAnalysisPlan:         true,
	SupportStatisticalAnalysis:  true,
	SupportDataCleaning:         true,
	SupportMethodologyReview:    true,
	SupportReportWriting:        true,
	SupportReproducibleNotebook: true,
	SupportOther:                true,
}

func (s SupportType) IsValid() bool {
	return validSupportTypes[s]
}

func (s SupportType) String() string {
	return string(s)
}

func NewSupportType(s string) (SupportType, error) {
	st := SupportType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid support type: %s", s)
	}
	return st, nil
}
