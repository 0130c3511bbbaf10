package dsn

import (
	"testing"

	"github.com/borntodev-academy/go-auth-api/internal/config"
)

func TestCreate(t *testing.T) {
	base := config.DB{
		Host:     "db.local",
		Port:     3306,
		User:     "auth",
		Password: "pw",
		Name:     "authdb",
		Extras:   "parseTime=True",
	}

	tests := []struct {
		name   string
		engine string
		want   string
	}{
		{
			name:   "mysql",
			engine: "mysql",
			want:   "auth:pw@tcp(db.local:3306)/authdb?parseTime=True",
		},
		{
			name:   "unknown engine falls back to mysql",
			engine: "",
			want:   "auth:pw@tcp(db.local:3306)/authdb?parseTime=True",
		},
		{
			name:   "postgres",
			engine: "postgres",
			want:   "host=db.local user=auth password=pw dbname=authdb port=3306 parseTime=True",
		},
		{
			name:   "sqlite",
			engine: "sqlite",
			want:   "authdb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := base
			db.GormEngine = tt.engine

			got := Create(&config.Config{DB: db})
			if got != tt.want {
				t.Errorf("Create() = %q, want %q", got, tt.want)
			}
		})
	}
}
