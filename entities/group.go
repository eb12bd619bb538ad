package entities

import "github.com/lib/pq"

type Group struct {
	Name    string         `json:"name" gorm:"type:varchar(255);primary_key"`
	AdminID string         `json:"admin_id" gorm:"type:varchar(128);not null"`
	Members pq.StringArray `json:"members" gorm:"type:text[]"`
}

func (Group) TableName() string {
	return "groups"
}

func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

func (g *Group) RemoveMember(userID string) {
	kept := make(pq.StringArray, 0, len(g.Members))
	for _, m := range g.Members {
		if m != userID {
			kept = append(kept, m)
		}
	}
	g.Members = kept
}
