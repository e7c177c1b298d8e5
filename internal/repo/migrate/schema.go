package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// UnitsColumns holds the columns for the "units" table.
	UnitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 200},
		{Name: "address", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "phone", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "email", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "working_hours", Type: field.TypeJSON},
		{Name: "specialties", Type: field.TypeJSON},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UnitsTable holds the schema information for the "units" table.
	UnitsTable = &schema.Table{
		Name:       "units",
		Columns:    UnitsColumns,
		PrimaryKey: []*schema.Column{UnitsColumns[0]},
	}
	// ProfilesColumns holds the columns for the "profiles" table.
	ProfilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "display_name", Type: field.TypeString, Size: 200},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "phone", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "role", Type: field.TypeEnum, Enums: []string{"admin", "coordinator", "therapist", "intern", "reception", "guardian"}},
		{Name: "home_unit_id", Type: field.TypeUUID, Nullable: true},
		{Name: "requires_supervision", Type: field.TypeBool, Default: false},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"active", "inactive", "suspended"}, Default: "active"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProfilesTable holds the schema information for the "profiles" table.
	ProfilesTable = &schema.Table{
		Name:       "profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "profiles_units_home_unit",
				Columns:    []*schema.Column{ProfilesColumns[5]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "profile_role_status",
				Unique:  false,
				Columns: []*schema.Column{ProfilesColumns[4], ProfilesColumns[7]},
			},
		},
	}
	// UnitMembershipsColumns holds the columns for the "unit_memberships" table.
	UnitMembershipsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "user_id", Type: field.TypeUUID},
		{Name: "unit_id", Type: field.TypeUUID},
		{Name: "role", Type: field.TypeEnum, Enums: []string{"admin", "coordinator", "therapist", "intern", "reception", "guardian"}},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UnitMembershipsTable holds the schema information for the "unit_memberships" table.
	UnitMembershipsTable = &schema.Table{
		Name:       "unit_memberships",
		Columns:    UnitMembershipsColumns,
		PrimaryKey: []*schema.Column{UnitMembershipsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "unit_memberships_profiles_memberships",
				Columns:    []*schema.Column{UnitMembershipsColumns[1]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "unit_memberships_units_memberships",
				Columns:    []*schema.Column{UnitMembershipsColumns[2]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "membership_user_id_unit_id",
				Unique:  true,
				Columns: []*schema.Column{UnitMembershipsColumns[1], UnitMembershipsColumns[2]},
			},
			{
				Name:    "membership_unit_id",
				Unique:  false,
				Columns: []*schema.Column{UnitMembershipsColumns[2]},
			},
		},
	}
	// PatientsColumns holds the columns for the "patients" table.
	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "unit_id", Type: field.TypeUUID},
		{Name: "full_name", Type: field.TypeString, Size: 255},
		{Name: "birth_date", Type: field.TypeTime, Nullable: true},
		{Name: "cpf_encrypted", Type: field.TypeString, Nullable: true, Size: 512},
		{Name: "cpf_hash", Type: field.TypeString, Nullable: true, Unique: true, Size: 64},
		{Name: "sex", Type: field.TypeString, Size: 16, Default: ""},
		{Name: "diagnosis", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "clinical_summary", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"active", "inactive", "discharged"}, Default: "active"},
		{Name: "created_by", Type: field.TypeUUID, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// PatientsTable holds the schema information for the "patients" table.
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "patients_units_patients",
				Columns:    []*schema.Column{PatientsColumns[1]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "patient_unit_id_status",
				Unique:  false,
				Columns: []*schema.Column{PatientsColumns[1], PatientsColumns[9]},
			},
		},
	}
	// PatientGuardiansColumns holds the columns for the "patient_guardians" table.
	PatientGuardiansColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "guardian_id", Type: field.TypeUUID},
		{Name: "relationship", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// PatientGuardiansTable holds the schema information for the "patient_guardians" table.
	PatientGuardiansTable = &schema.Table{
		Name:       "patient_guardians",
		Columns:    PatientGuardiansColumns,
		PrimaryKey: []*schema.Column{PatientGuardiansColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "patient_guardians_patients_guardians",
				Columns:    []*schema.Column{PatientGuardiansColumns[1]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "patient_guardians_profiles_wards",
				Columns:    []*schema.Column{PatientGuardiansColumns[2]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "patientguardian_patient_id_guardian_id",
				Unique:  true,
				Columns: []*schema.Column{PatientGuardiansColumns[1], PatientGuardiansColumns[2]},
			},
		},
	}
	// AppointmentsColumns holds the columns for the "appointments" table.
	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "unit_id", Type: field.TypeUUID},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "therapist_id", Type: field.TypeUUID},
		{Name: "room", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "specialty", Type: field.TypeString, Size: 120, Default: ""},
		{Name: "starts_at", Type: field.TypeTime},
		{Name: "ends_at", Type: field.TypeTime},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"scheduled", "confirmed", "completed", "attended", "no_show", "cancelled"}, Default: "scheduled"},
		{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_by", Type: field.TypeUUID, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_units_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[1]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_patients_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[2]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_profiles_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[3]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "appointment_unit_id_starts_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[1], AppointmentsColumns[6]},
			},
			{
				Name:    "appointment_therapist_id_starts_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[3], AppointmentsColumns[6]},
			},
		},
	}
	// EvolutionsColumns holds the columns for the "evolutions" table.
	EvolutionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "unit_id", Type: field.TypeUUID},
		{Name: "appointment_id", Type: field.TypeUUID, Unique: true},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "author_id", Type: field.TypeUUID},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "inappropriate_behavior", Type: field.TypeBool, Default: false},
		{Name: "behavior_description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "attachments", Type: field.TypeJSON},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"draft", "pending_supervision", "finalized"}, Default: "draft"},
		{Name: "cosignature", Type: field.TypeJSON, Nullable: true},
		{Name: "signed_at", Type: field.TypeTime, Nullable: true},
		{Name: "revision_feedback", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "version", Type: field.TypeInt, Default: 1},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// EvolutionsTable holds the schema information for the "evolutions" table.
	EvolutionsTable = &schema.Table{
		Name:       "evolutions",
		Columns:    EvolutionsColumns,
		PrimaryKey: []*schema.Column{EvolutionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "evolutions_appointments_evolution",
				Columns:    []*schema.Column{EvolutionsColumns[2]},
				RefColumns: []*schema.Column{AppointmentsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "evolutions_patients_evolutions",
				Columns:    []*schema.Column{EvolutionsColumns[3]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "evolutions_profiles_evolutions",
				Columns:    []*schema.Column{EvolutionsColumns[4]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "evolution_unit_id_status",
				Unique:  false,
				Columns: []*schema.Column{EvolutionsColumns[1], EvolutionsColumns[9]},
			},
			{
				Name:    "evolution_author_id",
				Unique:  false,
				Columns: []*schema.Column{EvolutionsColumns[4]},
			},
		},
	}
	// EvolutionAddendaColumns holds the columns for the "evolution_addenda" table.
	EvolutionAddendaColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "evolution_id", Type: field.TypeUUID},
		{Name: "author_id", Type: field.TypeUUID},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// EvolutionAddendaTable holds the schema information for the "evolution_addenda" table.
	EvolutionAddendaTable = &schema.Table{
		Name:       "evolution_addenda",
		Columns:    EvolutionAddendaColumns,
		PrimaryKey: []*schema.Column{EvolutionAddendaColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "evolution_addenda_evolutions_addenda",
				Columns:    []*schema.Column{EvolutionAddendaColumns[1]},
				RefColumns: []*schema.Column{EvolutionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "addendum_evolution_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{EvolutionAddendaColumns[1], EvolutionAddendaColumns[4]},
			},
		},
	}
	// AssessmentsColumns holds the columns for the "assessments" table.
	AssessmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "unit_id", Type: field.TypeUUID},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "protocol_id", Type: field.TypeString, Size: 32},
		{Name: "assessor_id", Type: field.TypeUUID},
		{Name: "scores", Type: field.TypeJSON},
		{Name: "total", Type: field.TypeFloat64},
		{Name: "classification", Type: field.TypeString, Size: 120},
		{Name: "observations", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "recommendations", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AssessmentsTable holds the schema information for the "assessments" table.
	AssessmentsTable = &schema.Table{
		Name:       "assessments",
		Columns:    AssessmentsColumns,
		PrimaryKey: []*schema.Column{AssessmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "assessments_patients_assessments",
				Columns:    []*schema.Column{AssessmentsColumns[2]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "assessment_patient_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{AssessmentsColumns[2], AssessmentsColumns[10]},
			},
		},
	}
	// NotificationsColumns holds the columns for the "notifications" table.
	NotificationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "user_id", Type: field.TypeUUID},
		{Name: "type", Type: field.TypeString, Size: 64},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "data", Type: field.TypeJSON},
		{Name: "is_read", Type: field.TypeBool, Default: false},
		{Name: "read_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// NotificationsTable holds the schema information for the "notifications" table.
	NotificationsTable = &schema.Table{
		Name:       "notifications",
		Columns:    NotificationsColumns,
		PrimaryKey: []*schema.Column{NotificationsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "notifications_profiles_notifications",
				Columns:    []*schema.Column{NotificationsColumns[1]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "notification_user_id_is_read",
				Unique:  false,
				Columns: []*schema.Column{NotificationsColumns[1], NotificationsColumns[6]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UnitsTable,
		ProfilesTable,
		UnitMembershipsTable,
		PatientsTable,
		PatientGuardiansTable,
		AppointmentsTable,
		EvolutionsTable,
		EvolutionAddendaTable,
		AssessmentsTable,
		NotificationsTable,
	}
)

func init() {
	ProfilesTable.ForeignKeys[0].RefTable = UnitsTable
	UnitMembershipsTable.ForeignKeys[0].RefTable = ProfilesTable
	UnitMembershipsTable.ForeignKeys[1].RefTable = UnitsTable
	PatientsTable.ForeignKeys[0].RefTable = UnitsTable
	PatientGuardiansTable.ForeignKeys[0].RefTable = PatientsTable
	PatientGuardiansTable.ForeignKeys[1].RefTable = ProfilesTable
	AppointmentsTable.ForeignKeys[0].RefTable = UnitsTable
	AppointmentsTable.ForeignKeys[1].RefTable = PatientsTable
	AppointmentsTable.ForeignKeys[2].RefTable = ProfilesTable
	EvolutionsTable.ForeignKeys[0].RefTable = AppointmentsTable
	EvolutionsTable.ForeignKeys[1].RefTable = PatientsTable
	EvolutionsTable.ForeignKeys[2].RefTable = ProfilesTable
	EvolutionAddendaTable.ForeignKeys[0].RefTable = EvolutionsTable
	AssessmentsTable.ForeignKeys[0].RefTable = PatientsTable
	NotificationsTable.ForeignKeys[0].RefTable = ProfilesTable
}
