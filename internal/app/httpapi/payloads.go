package httpapi

import (
	goalssvc "github.com/jakehorton1228-droid/habit-tracker/internal/app/services/goals"
	journalsvc "github.com/jakehorton1228-droid/habit-tracker/internal/app/services/journal"
)

// Local wire types for request bodies, converted to the service parameter
// structs. The field sets are identical; the conversion keeps the decoder's
// unknown-field rejection anchored to what the API documents.

type goalsParams goalssvc.Params

func (p goalsParams) toParams() goalssvc.Params { return goalssvc.Params(p) }

type journalParams journalsvc.Params

func (p journalParams) toParams() journalsvc.Params { return journalsvc.Params(p) }
