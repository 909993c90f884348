package resources

import (
	"github.com/JonMunkholm/crefinex/internal/core"
)

func init() {
	registerCourses()
	registerStudents()
	registerEnrollments()
}

func registerCourses() {
	core.Register(core.ResourceDefinition{
		Info: core.ResourceInfo{
			Key:         "courses",
			Group:       GroupEducation,
			Label:       "Cursos",
			Description: "Visualiza todos los cursos de Crefinex",
		},
		Table: "courses",
		Columns: []Column{
			idColumn(),
			textColumn("title", "Título"),
			textColumn("description", "Descripción"),
			textColumn("objective", "Objetivo"),
			textColumn("syllabus", "¿Qué Aprenderás?"),
			textColumn("level", "Nivel"),
			dateColumn("start_date", "Fecha de inicio", "Sin fecha de inicio"),
			dateColumn("end_date", "Fecha de culminación", "Sin fecha de culminación"),
			priceColumn("price", "Precio en Dolares"),
			textColumn("schedules", "Horarios"),
			numberColumn("students", "Estudiantes"),
		},
		SelectSQL: `SELECT c.id, c.title, c.description, c.objective, c.syllabus,
			'Nivel ' || l."order" || ' - ' || l.name AS level,
			c.start_date, c.end_date, c.price,
			COALESCE((SELECT string_agg(s.day || ' (' || s.start || ' - ' || s."end" || ')', ', ')
				FROM schedules s WHERE s.course_id = c.id), '') AS schedules,
			(SELECT COUNT(*) FROM course_students cs WHERE cs.course_id = c.id) AS students
			FROM courses c
			LEFT JOIN levels l ON l.id = c.level_id
			ORDER BY c.created_at DESC`,
	})
}

func registerStudents() {
	core.Register(core.ResourceDefinition{
		Info: core.ResourceInfo{
			Key:         "students",
			Group:       GroupEducation,
			Label:       "Estudiantes",
			Description: "Visualiza todos los estudiantes de Crefinex",
		},
		Table: "students",
		Columns: []Column{
			idColumn(),
			textColumn("name", "Nombre"),
			textColumn("last_name", "Apellido"),
			textColumn("identification", "Cédula"),
			textColumn("email", "Correo"),
			textColumn("phone", "Teléfono"),
			dateColumn("birth_date", "Fecha de nacimiento", "Sin fecha"),
			numberColumn("courses", "Cursos"),
			dateColumn("created_at", "Registrado", ""),
		},
		SelectSQL: `SELECT st.id, st.name, st.last_name, st.identification, st.email,
			st.phone, st.birth_date,
			(SELECT COUNT(*) FROM course_students cs WHERE cs.student_id = st.id) AS courses,
			st.created_at
			FROM students st
			ORDER BY st.created_at DESC`,
	})
}

func registerEnrollments() {
	core.Register(core.ResourceDefinition{
		Info: core.ResourceInfo{
			Key:         "enrollments",
			Group:       GroupEducation,
			Label:       "Inscripciones",
			Description: "Estudiantes inscritos en cada curso",
		},
		Table: "course_students",
		Columns: []Column{
			idColumn(),
			textColumn("course", "Curso"),
			textColumn("student", "Estudiante"),
			textColumn("identification", "Cédula"),
			dateColumn("enrolled_at", "Fecha de inscripción", "Sin fecha"),
		},
		SelectSQL: `SELECT cs.id, c.title AS course,
			st.name || ' ' || st.last_name AS student,
			st.identification, cs.created_at AS enrolled_at
			FROM course_students cs
			JOIN courses c ON c.id = cs.course_id
			JOIN students st ON st.id = cs.student_id
			ORDER BY cs.created_at DESC`,
	})
}
