package engine

import (
	"testing"

	"deckdrill/internal/apperr"
	"deckdrill/internal/models"
)

func intPtr(v int) *int { return &v }

func TestLinearNavigate(t *testing.T) {
	tests := []struct {
		name       string
		startIndex int
		totalUnits int
		cmd        models.EventCommand
		wantIndex  int
		wantErr    bool
	}{
		{
			name:       "next advances",
			startIndex: 0,
			totalUnits: 3,
			cmd:        models.EventCommand{Type: models.EventNext},
			wantIndex:  1,
		},
		{
			name:       "next clamps at last item",
			startIndex: 2,
			totalUnits: 3,
			cmd:        models.EventCommand{Type: models.EventNext},
			wantIndex:  2,
		},
		{
			name:       "previous retreats",
			startIndex: 2,
			totalUnits: 3,
			cmd:        models.EventCommand{Type: models.EventPrevious},
			wantIndex:  1,
		},
		{
			name:       "previous clamps at zero",
			startIndex: 0,
			totalUnits: 3,
			cmd:        models.EventCommand{Type: models.EventPrevious},
			wantIndex:  0,
		},
		{
			name:       "goto valid index",
			startIndex: 0,
			totalUnits: 5,
			cmd:        models.EventCommand{Type: models.EventGotoIndex, TargetIndex: intPtr(4)},
			wantIndex:  4,
		},
		{
			name:       "goto negative index",
			startIndex: 1,
			totalUnits: 5,
			cmd:        models.EventCommand{Type: models.EventGotoIndex, TargetIndex: intPtr(-1)},
			wantIndex:  1,
			wantErr:    true,
		},
		{
			name:       "goto past last index",
			startIndex: 1,
			totalUnits: 5,
			cmd:        models.EventCommand{Type: models.EventGotoIndex, TargetIndex: intPtr(5)},
			wantIndex:  1,
			wantErr:    true,
		},
		{
			name:       "goto without target",
			startIndex: 1,
			totalUnits: 5,
			cmd:        models.EventCommand{Type: models.EventGotoIndex},
			wantIndex:  1,
			wantErr:    true,
		},
		{
			name:       "goto zero on empty snapshot",
			startIndex: 0,
			totalUnits: 0,
			cmd:        models.EventCommand{Type: models.EventGotoIndex, TargetIndex: intPtr(0)},
			wantIndex:  0,
		},
		{
			name:       "goto nonzero on empty snapshot",
			startIndex: 0,
			totalUnits: 0,
			cmd:        models.EventCommand{Type: models.EventGotoIndex, TargetIndex: intPtr(1)},
			wantIndex:  0,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &LinearEngine{mode: models.ModeReview}
			session := &models.StudySession{
				CurrentIndex: tt.startIndex,
				TotalUnits:   tt.totalUnits,
			}

			err := eng.navigate(session, &tt.cmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if apperr.KindOf(err) != apperr.KindValidation {
					t.Errorf("KindOf() = %v, want KindValidation", apperr.KindOf(err))
				}
			} else if err != nil {
				t.Fatalf("navigate() error = %v", err)
			}
			if session.CurrentIndex != tt.wantIndex {
				t.Errorf("CurrentIndex = %d, want %d", session.CurrentIndex, tt.wantIndex)
			}
		})
	}
}
