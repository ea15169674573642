package domain

// ResultRow is the outcome of one contract number for one run.
// SUCCESS implies ContractID, CooperationID and OpenChatID are all
// non-empty; any other status means the pipeline stopped at the stage
// that produced it and later fields stay empty.
type ResultRow struct {
	ContractNumber string `json:"contract_number"`
	ContractID     string `json:"contract_id,omitempty"`
	CooperationID  string `json:"cooperation_id,omitempty"`
	OpenChatID     string `json:"openChatId,omitempty"`
	Status         Status `json:"status"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// ResultColumns is the header of the persisted output artifact, in order.
var ResultColumns = []string{
	"contract_number",
	"contract_id",
	"cooperation_id",
	"openChatId",
	"status",
	"error_code",
	"error_message",
}

// Fields returns the row's values in ResultColumns order.
func (r ResultRow) Fields() []string {
	return []string{
		r.ContractNumber,
		r.ContractID,
		r.CooperationID,
		r.OpenChatID,
		string(r.Status),
		r.ErrorCode,
		r.ErrorMessage,
	}
}

// RowFromFields rebuilds a row from persisted values in ResultColumns
// order. Short records are tolerated; the status column must parse.
func RowFromFields(fields []string) (ResultRow, error) {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	status, err := ParseStatus(get(4))
	if err != nil {
		return ResultRow{}, err
	}
	return ResultRow{
		ContractNumber: get(0),
		ContractID:     get(1),
		CooperationID:  get(2),
		OpenChatID:     get(3),
		Status:         status,
		ErrorCode:      get(5),
		ErrorMessage:   get(6),
	}, nil
}
