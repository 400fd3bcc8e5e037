package blueprint

import "github.com/sia-project/sia-api/internal/models"

// EmbeddedID is the reserved identifier of the compiled-in curriculum. The
// catalog refuses registrations under this id.
const EmbeddedID = "isof-virtual"

// embeddedISOF is the Ingeniería de Software (UNIMINUTO Virtual) curriculum,
// 140 credits over 10 four-month blocks.
var embeddedISOF = models.Blueprint{
	ID:           EmbeddedID,
	ProgramCode:  "ISOF",
	Name:         "Ingeniería de Software – UNIMINUTO Virtual",
	TotalCredits: 140,
	Blocks: []models.BlueprintBlock{
		{
			Period: 1,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"INFO 1030"}, Name: "Habilidades Digitales para el Aprendizaje", Credits: 3},
				{Codes: models.CodeList{"LENG 1040"}, Name: "Lectura y Escritura en el Contexto Digital", Credits: 3},
				{Codes: models.CodeList{"UVFI D022"}, Name: "Precálculo", Credits: 3},
				{Codes: models.CodeList{"FHUM 1010"}, Name: "Proyecto de Vida", Credits: 2},
				{Codes: models.CodeList{"ISOF V003"}, Name: "Introducción a la Ingeniería de Software", Credits: 3},
			},
		},
		{
			Period: 2,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI V011"}, Name: "Álgebra Lineal", Credits: 3},
				{Codes: models.CodeList{"ISOF V013"}, Name: "Desarrollo de Software Orientado a Objetos", Credits: 3},
				{Codes: models.CodeList{"ISUD D063"}, Name: "Infraestructura de TI", Credits: 3},
				{Codes: models.CodeList{"FHUM 1020"}, Name: "Cátedra Minuto de Dios", Credits: 2},
			},
		},
		{
			Period: 3,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI V051"}, Name: "Matemáticas Discretas", Credits: 3},
				{Codes: models.CodeList{"UVFI D031"}, Name: "Cálculo Diferencial", Credits: 3},
				{Codes: models.CodeList{"ISOF V023"}, Name: "Estructuras de Datos y Análisis de Algoritmos", Credits: 3},
				{Codes: models.CodeList{"ISOF V033"}, Name: "Análisis y Diseño de Software", Credits: 3},
				{Codes: models.CodeList{"ISOF V043"}, Name: "Sistemas de Gestión de Bases de Datos", Credits: 3},
			},
		},
		{
			Period: 4,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI D061"}, Name: "Cálculo Integral", Credits: 3},
				{Codes: models.CodeList{"ISOF V053"}, Name: "Ingeniería de Software Avanzada", Credits: 3},
				{Codes: models.CodeList{"ISOF V063"}, Name: "Desarrollo de Software Orientado a la Web", Credits: 3},
				{Codes: models.CodeList{"ISOF V073"}, Name: "Data Warehouse y Minería de Datos", Credits: 3},
				{Codes: models.CodeList{"ISUD D103"}, Name: "Sistemas Operativos", Credits: 3},
			},
		},
		{
			Period: 5,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI D041"}, Name: "Física Mecánica", Credits: 3},
				{Codes: models.CodeList{"FHUM 1120"}, Name: "Constitución Política", Credits: 2},
				{Codes: models.CodeList{"ISOF V083"}, Name: "Diseño de Interfaces", Credits: 3},
				{Codes: models.CodeList{"ISOF V093"}, Name: "Inteligencia de Negocios", Credits: 3},
			},
		},
		{
			Period: 6,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI V021"}, Name: "Ecuaciones Diferenciales", Credits: 3},
				{Codes: models.CodeList{"ETIC 190"}, Name: "Ética Profesional", Credits: 2},
				{Codes: models.CodeList{"ADMI 1070", "ADMI 2000"}, Name: "Emprendimiento", Credits: 3},
				{Codes: models.CodeList{"ISOF V103"}, Name: "Pruebas de Software y Aseguramiento de la Calidad", Credits: 3},
				{Codes: models.CodeList{"ISOF V113"}, Name: "Infraestructura en la Nube", Credits: 3},
			},
		},
		{
			Period: 7,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI D141"}, Name: "Física Electromagnética", Credits: 3},
				{Codes: models.CodeList{"ISOF V123"}, Name: "Seguridad en el Desarrollo de Software", Credits: 3},
				{Codes: models.CodeList{"ISOF V133"}, Name: "Desarrollo de Software en Plataformas Móviles", Credits: 3},
				{Codes: models.CodeList{"ISOF V143"}, Name: "Ethical Hacking y Seguridad de la Información", Credits: 3},
				{Codes: models.CodeList{"ISOF V004"}, Name: "Electiva Profesional Complementaria I (CPC)", Credits: 3},
			},
		},
		{
			Period: 8,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI V031"}, Name: "Probabilidad y Estadística", Credits: 3},
				{Codes: models.CodeList{"PRAC 1010"}, Name: "Práctica en Responsabilidad Social", Credits: 3},
				{Codes: models.CodeList{"ISOF V153"}, Name: "Computación Bioinspirada", Credits: 3},
				{Codes: models.CodeList{"ISOF V163"}, Name: "Inteligencia Artificial y Sistemas Inteligentes", Credits: 3},
				{Codes: models.CodeList{"ISOF V014"}, Name: "Electiva Profesional Complementaria II (CPC)", Credits: 3},
			},
		},
		{
			Period: 9,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"UVFI V041"}, Name: "Geometría", Credits: 3},
				{Codes: models.CodeList{"ISOF V173"}, Name: "Gerencia de Proyectos de Software", Credits: 3},
				{Codes: models.CodeList{"ISOF V183"}, Name: "Machine Learning", Credits: 3},
				{Codes: models.CodeList{"ISOF V193"}, Name: "Plataformas de Desarrollo de Software", Credits: 3},
				{Codes: models.CodeList{"UVFI V061"}, Name: "Fundamentos de Investigación", Credits: 3},
			},
		},
		{
			Period: 10,
			Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"ISOF V203"}, Name: "Administración y Gestión de la Configuración de Software", Credits: 3},
				{Codes: models.CodeList{"UVFI V071"}, Name: "Metodología de la Investigación", Credits: 3},
				{Codes: models.CodeList{"ISOF V024"}, Name: "Electiva Profesional Complementaria III (CPC)", Credits: 3},
				{Codes: models.CodeList{"ISOF V034"}, Name: "Práctica Profesional", Credits: 6},
			},
		},
	},
}

// Embedded returns a copy of the compiled-in curriculum.
func Embedded() models.Blueprint {
	bp := embeddedISOF
	bp.Blocks = make([]models.BlueprintBlock, len(embeddedISOF.Blocks))
	copy(bp.Blocks, embeddedISOF.Blocks)
	return bp
}
