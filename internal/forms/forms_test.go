package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordStrength_Tiers(t *testing.T) {
	tests := []struct {
		pw   string
		want Strength
	}{
		{"", VeryWeak},
		{"abc", VeryWeak},
		{"ABCDEFGH", Weak},        // length + upper
		{"abcdefg1", Medium},      // length + lower + digit
		{"Abcdefg1", Strong},      // + upper
		{"Abcdefg1!", VeryStrong}, // + symbol
		{"aA1!", Strong},          // four classes, too short
		{"pass word", Medium},     // space counts as a symbol
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			require.Equal(t, tt.want, PasswordStrength(tt.pw))
		})
	}
}

func TestPasswordStrength_Extremes(t *testing.T) {
	require.Equal(t, 5, PasswordChecks("Str0ng!Pass"))
	require.Equal(t, VeryStrong, PasswordStrength("Str0ng!Pass"))
	require.Equal(t, "Very strong password", VeryStrong.String())
	require.Equal(t, "strong", VeryStrong.Class())

	require.Equal(t, 0, PasswordChecks(""))
	require.Equal(t, VeryWeak, Tier(0))
	require.Equal(t, VeryWeak, Tier(1))
	require.Equal(t, "weak", VeryWeak.Class())
	require.Equal(t, "medium", Medium.Class())
	require.Equal(t, "", Strength(0).String())
}

func TestValidEmailAndPhone(t *testing.T) {
	require.True(t, ValidEmail("demo@tidbid.com"))
	require.False(t, ValidEmail("demo@tidbid"))
	require.False(t, ValidEmail("de mo@tidbid.com"))
	require.False(t, ValidEmail("@tidbid.com"))

	require.True(t, ValidPhone("+1 234 567 8900"))
	require.True(t, ValidPhone("(555) 123-4567"))
	require.False(t, ValidPhone("12345"))
	require.False(t, ValidPhone("555-CALL-NOW"))
}

func validRegistration() Registration {
	return Registration{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Phone:           "+44 20 7946 0958",
		Password:        "Analyt1cal",
		ConfirmPassword: "Analyt1cal",
		Terms:           true,
	}
}

func TestRegistration_Valid(t *testing.T) {
	r := validRegistration()
	require.True(t, r.Validate().Valid())
	require.Equal(t, "Ada Lovelace", r.FullName())
}

func TestRegistration_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
		fields []string
	}{
		{"missing first name", func(r *Registration) { r.FirstName = "  " }, []string{"firstName"}},
		{"bad email", func(r *Registration) { r.Email = "nope" }, []string{"email"}},
		{"bad phone", func(r *Registration) { r.Phone = "123" }, []string{"phone"}},
		{"weak password", func(r *Registration) { r.Password, r.ConfirmPassword = "password", "password" }, []string{"password"}},
		{"mismatch", func(r *Registration) { r.ConfirmPassword = "Analyt1cal!" }, []string{"confirmPassword"}},
		{"terms", func(r *Registration) { r.Terms = false }, []string{"terms"}},
		{"empty email keeps required message", func(r *Registration) { r.Email = "" }, []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)
			errs := r.Validate()
			require.Equal(t, tt.fields, errs.Fields())
		})
	}

	r := validRegistration()
	r.Email = ""
	require.Equal(t, "This field is required", r.Validate()["email"])
}

func TestClientLogin(t *testing.T) {
	require.True(t, ClientLogin{Email: "demo@tidbid.com", Password: "password123"}.Validate().Valid())

	errs := ClientLogin{}.Validate()
	require.Equal(t, "Email is required", errs["email"])
	require.Equal(t, "Password is required", errs["password"])

	errs = ClientLogin{Email: "bad", Password: "short"}.Validate()
	require.Equal(t, "Please enter a valid email address", errs["email"])
	require.Equal(t, "Password must be at least 8 characters long", errs["password"])
}

func TestAdminLogin(t *testing.T) {
	require.True(t, AdminLogin{Email: "admin@tidbid.com", Password: "admin123"}.Validate().Valid())
	require.Equal(t, []string{"form"}, AdminLogin{Email: "admin@tidbid.com"}.Validate().Fields())
	require.Equal(t, []string{"email"}, AdminLogin{Email: "admin", Password: "x"}.Validate().Fields())
}

func TestForgotPassword(t *testing.T) {
	require.True(t, ForgotPassword{Email: "a@b.co"}.Validate().Valid())
	require.Equal(t, "Please enter your email address first", ForgotPassword{}.Validate()["email"])
	require.Equal(t, "Please enter a valid email address", ForgotPassword{Email: "x"}.Validate()["email"])
}

func TestProfileUpdate(t *testing.T) {
	p := ProfileUpdate{Name: " Jane Roe ", Email: "jane@example.com", Phone: "+1 555 0100", School: "ABC University"}
	require.True(t, p.Validate().Valid())
	require.Equal(t, "Jane Roe", p.Trimmed().Name)

	p.School = " "
	require.Equal(t, "Please fill in all fields", p.Validate()["form"])

	p.School = "X"
	p.Email = "jane"
	require.Equal(t, []string{"email"}, p.Validate().Fields())
}

func TestPasswordChange(t *testing.T) {
	require.True(t, PasswordChange{Current: "old", New: "newpassword", Confirm: "newpassword"}.Validate().Valid())
	require.Equal(t, []string{"form"}, PasswordChange{New: "x"}.Validate().Fields())
	require.Equal(t, []string{"newPassword"}, PasswordChange{Current: "a", New: "short", Confirm: "short"}.Validate().Fields())
	require.Equal(t, []string{"confirmPassword"}, PasswordChange{Current: "a", New: "longenough", Confirm: "different1"}.Validate().Fields())
}

func TestInitials(t *testing.T) {
	require.Equal(t, "JD", Initials("John Doe"))
	require.Equal(t, "MVB", Initials("mary van  buren"))
	require.Equal(t, "", Initials("   "))
	require.Equal(t, "ÉL", Initials("émile lenoir"))
}

func TestCounter(t *testing.T) {
	require.Equal(t, CounterNormal, Counter(0))
	require.Equal(t, CounterNormal, Counter(400))
	require.Equal(t, CounterWarning, Counter(401))
	require.Equal(t, CounterDanger, Counter(451))
	require.Equal(t, CounterDanger, Counter(len(strings.Repeat("x", 500))))
}

func TestRoleLoginPath(t *testing.T) {
	require.Equal(t, "/client/login", RoleClient.LoginPath())
	require.Equal(t, "/admin/login", RoleAdmin.LoginPath())
	require.Equal(t, "", Role("guest").LoginPath())
}
