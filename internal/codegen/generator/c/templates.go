package cgen

// banner opens both files; the source variant carries no licence text.
const banner = `
/*******************************************************************************

   File{{if eq .Ext "c"}} -{{else}}:{{end}} CO{{ref}}_OD.{{.Ext}}
   CANopen Object Dictionary.

   Copyright (C) 2004-2008 Janez Paternoster

   License: GNU Lesser General Public License (LGPL).

   <http://canopennode.sourceforge.net>

   (For more information see <CO_SDO.h>.)
{{if eq .Ext "c"}}*/
/*
{{else}}
   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Lesser General Public License as published by
   the Free Software Foundation, either version 2.1 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Lesser General Public License for more details.

   You should have received a copy of the GNU Lesser General Public License
   along with this program.  If not, see <http://www.gnu.org/licenses/>.


{{end}}   Author: Janez Paternoster


   This file was automatically generated with CANopenNode ODE.
   DON'T EDIT THIS FILE MANUALLY !!!!

*******************************************************************************/
`

const headerTmpl = `{{template "banner" .}}
#ifndef CO_OD{{ref}}_H
#define CO_OD{{ref}}_H


/*******************************************************************************
   CANopen DATA TYPES
*******************************************************************************/
   typedef bool_t       BOOLEAN;
   typedef uint8_t      UNSIGNED8;
   typedef uint16_t     UNSIGNED16;
   typedef uint32_t     UNSIGNED24;
   typedef uint32_t     UNSIGNED32;
   typedef uint64_t     UNSIGNED40;
   typedef uint64_t     UNSIGNED48;
   typedef uint64_t     UNSIGNED56;
   typedef uint64_t     UNSIGNED64;
   typedef int8_t       INTEGER8;
   typedef int16_t      INTEGER16;
   typedef int32_t      INTEGER24;
   typedef int32_t      INTEGER32;
   typedef int64_t      INTEGER40;
   typedef int64_t      INTEGER48;
   typedef int64_t      INTEGER56;
   typedef int64_t      INTEGER64;
   typedef float32_t    REAL32;
   typedef float64_t    REAL64;
   typedef char_t       VISIBLE_STRING;
   typedef oChar_t      OCTET_STRING;
   typedef uint16_t     UNICODE_STRING;
   typedef uint64_t     TIME_OF_DAY;
   typedef uint64_t     TIME_DIFFERENCE;
   typedef domain_t     DOMAIN;


/*******************************************************************************
   FILE INFO:
{{- range .FileInfo}}
      {{pad 13 (printf "%s:" .Key)}} {{.Value}}
{{- end}}
*******************************************************************************/


/*******************************************************************************
   DEVICE INFO:
{{- range .DeviceInfo}}
      {{pad 21 (printf "%s:" .Key)}} {{.Value}}
{{- end}}
*******************************************************************************/


/*******************************************************************************
   FEATURES
*******************************************************************************/
{{lines .Macros}}


/*******************************************************************************
   OBJECT DICTIONARY
*******************************************************************************/
   #define CO{{ref}}_OD_NoOfElements             {{len .Rows}}


/*******************************************************************************
   TYPE DEFINITIONS FOR RECORDS
*******************************************************************************/
{{lines .Typedefs}}


/*******************************************************************************
   STRUCTURES FOR VARIABLES IN DIFFERENT MEMORY LOCATIONS
*******************************************************************************/
#define  CO{{ref}}_OD_FIRST_LAST_WORD     0x55 //Any value from 0x01 to 0xFE. If changed, EEPROM will be reinitialized.

{{template "hstruct" index .Structs 0}}
{{template "hstruct" index .Structs 1}}

{{template "hstruct" index .Structs 2}}


/***** Declaration of Object Dictionary variables *****************************/
extern struct sCO{{ref}}_OD_RAM CO{{ref}}_OD_RAM;

extern struct sCO{{ref}}_OD_EEPROM CO{{ref}}_OD_EEPROM;

extern struct sCO{{ref}}_OD_ROM CO{{ref}}_OD_ROM;


/*******************************************************************************
   ALIASES FOR OBJECT DICTIONARY VARIABLES
*******************************************************************************/
{{lines .Aliases}}

#endif
`

const sourceTmpl = `{{template "banner" .}}

#include "CO_driver.h"
#include "CO{{ref}}_OD.h"
#include "CO_SDO.h"


/*******************************************************************************
   DEFINITION AND INITIALIZATION OF OBJECT DICTIONARY VARIABLES
*******************************************************************************/

{{template "cstruct" index .Structs 0}}

{{template "cstruct" index .Structs 1}}

{{template "cstruct" index .Structs 2}}

/*******************************************************************************
   STRUCTURES FOR RECORD TYPE OBJECTS
*******************************************************************************/
{{lines .Records}}


/*******************************************************************************
   SDO SERVER ACCESS FUNCTIONS WITH USER CODE
*******************************************************************************/
#define WRITING (dir == 1)
#define READING (dir == 0)
{{lines .Functions}}


/*******************************************************************************
   OBJECT DICTIONARY
*******************************************************************************/
const CO_OD_entry_t CO{{ref}}_OD[CO{{ref}}_OD_NoOfElements] = {
{{indent 3 (lines .Rows)}}
};
`

const headerStructTmpl = `/***** Structure for {{.Name}} variables {{.HeaderRule}}*/
struct sCO{{ref}}_OD_{{.Name}}{
               UNSIGNED32     FirstWord;

{{indent 15 (lines .Bucket.Definitions)}}

               UNSIGNED32     LastWord;
};
`

// sourceStructTmpl defines one storage struct; ROM is flagged as flash
// resident and its closing sentinel has no trailing comma.
const sourceStructTmpl = `/***** Definition for {{.Name}} variables {{.SourceRule}}*/
{{.Lead}}struct sCO{{ref}}_OD_{{.Name}} CO{{ref}}_OD_{{.Name}} = {{.Open}}
           CO{{ref}}_OD_FIRST_LAST_WORD,

{{indent 11 (lines .Bucket.Initializers)}}

           CO{{ref}}_OD_FIRST_LAST_WORD{{.LastSep}}
};
`
