package models

// GuardStats is the dashboard a guard sees: only their own activity.
type GuardStats struct {
	OccurrencesToday int  `json:"occurrences_today"`
	RoundsToday      int  `json:"rounds_today"`
	ActiveRound      bool `json:"active_round"`
	ActiveShift      bool `json:"active_shift"`
}

// OverviewStats is the dashboard supervisors and administrators see.
type OverviewStats struct {
	OccurrencesToday        int `json:"occurrences_today"`
	RoundsToday             int `json:"rounds_today"`
	OpenOccurrences         int `json:"open_occurrences"`
	CriticalOpenOccurrences int `json:"critical_open_occurrences"`
	ActiveRounds            int `json:"active_rounds"`
	ActiveShifts            int `json:"active_shifts"`
	ActiveGuards            int `json:"active_guards"`
	TotalActiveUsers        int `json:"total_active_users"`
}
