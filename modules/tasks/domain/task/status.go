package task

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
	StatusApproved   Status = "approved"
	StatusCancelled  Status = "cancelled"
)

var AllStatuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusDone,
	StatusApproved,
	StatusCancelled,
}

func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave s without elevated
// access.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusCancelled
}

// RequesterRank classifies who asked for the work.
type RequesterRank string

const (
	RankMilletvekili RequesterRank = "milletvekili"
	RankKaymakamlik  RequesterRank = "kaymakamlik"
	RankMuhtarlik    RequesterRank = "muhtarlik"
	RankDiger        RequesterRank = "diger"
)

var AllRanks = []RequesterRank{RankMilletvekili, RankKaymakamlik, RankMuhtarlik, RankDiger}

func (r RequesterRank) IsValid() bool {
	for _, known := range AllRanks {
		if r == known {
			return true
		}
	}
	return false
}
