package financials

import "testing"

func TestParseConceptRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "standard showAR call",
			ref:  "top.Show.showAR( this, 'defref_us-gaap_CostOfGoodsSold', window );",
			want: "us-gaap_CostOfGoodsSold",
		},
		{
			name: "company namespace",
			ref:  "top.Show.showAR( this, 'defref_air_OperatingIncomeLossIncludingIncomeLossFromEquityMethodInvestments', window );",
			want: "air_OperatingIncomeLossIncludingIncomeLossFromEquityMethodInvestments",
		},
		{
			name: "no reference marker",
			ref:  "top.Show.toggleNext( this );",
			want: "",
		},
		{
			name: "empty string",
			ref:  "",
			want: "",
		},
		{
			name: "unterminated payload",
			ref:  "top.Show.showAR( this, 'defref_us-gaap_Assets",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseConceptRef(tt.ref); got != tt.want {
				t.Errorf("parseConceptRef(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
